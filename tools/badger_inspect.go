// Command badger_inspect dumps the durable presence records for local
// debugging: which usernames have a mirror, where they were last seen,
// and what they last said.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/olekukonko/tablewriter"
)

type diskRecord struct {
	X       float64 `cbor:"x"`
	Y       float64 `cbor:"y"`
	Message string  `cbor:"message"`
}

func main() {
	dbPath := flag.String("db", "/tmp/presence-lab", "Path to badger DB")
	prefix := flag.String("prefix", "presence:", "Prefix to scan")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).WithReadOnly(true))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Username", "X", "Y", "Message"})
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
			key := string(item.Key())

			var record diskRecord
			err := item.Value(func(val []byte) error {
				return cbor.Unmarshal(val, &record)
			})
			if err != nil {
				table.Append([]string{key, "<decode error>", "", "", err.Error()})
				continue
			}

			username := strings.TrimPrefix(key, *prefix)
			table.Append([]string{
				key,
				username,
				fmt.Sprintf("%.1f", record.X),
				fmt.Sprintf("%.1f", record.Y),
				record.Message,
			})
		}
		return nil
	})
	if err != nil {
		log.Fatal("Error while scanning records: ", err)
	}

	table.Render()
}
