// badger_inspect dumps the document-store contents for debugging: message,
// user profile and friend request documents, selected by key prefix.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", "./data", "Path to badger DB")
	prefix := flag.String("prefix", "msg:", "Prefix to scan (msg:, user:, freq:, friends:)")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).WithReadOnly(true).WithLoggingLevel(badger.ERROR))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Document"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()

			// Secondary index entries hold raw ids, not JSON documents.
			if strings.HasPrefix(string(item.Key()), "freqidx:") {
				continue
			}

			err := item.Value(func(v []byte) error {
				var compact bytes.Buffer
				if err := json.Compact(&compact, v); err != nil {
					// Log and keep scanning instead of stopping the dump.
					fmt.Printf("Error reading key %s: %v\n", string(item.Key()), err)
					return nil
				}
				table.Append([]string{string(item.Key()), compact.String()})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Error while scanning: ", err)
	}

	table.Render()
}
