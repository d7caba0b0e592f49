package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"btreeidx/internal/config"
	"btreeidx/internal/dump"
	"btreeidx/internal/genrecord"
	"btreeidx/internal/index/btree"
	"btreeidx/internal/storage/layout"
)

func runREPL(tree *btree.BTree, cfg config.Config, rng *rand.Rand) {
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print("btree> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Println("\nExiting.")
				return
			}
			fmt.Println("Read error:", err)
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		cmd := strings.ToLower(fields[0])
		args := fields[1:]

		switch cmd {
		case "exit", "quit":
			fmt.Println("Bye.")
			return
		case "help":
			printHelp()
		case "insert":
			handleInsert(tree, args)
		case "search":
			handleSearch(tree, args)
		case "remove", "delete":
			handleRemove(tree, args)
		case "update":
			handleUpdate(tree, args)
		case "print":
			handlePrint(tree, args)
		case "gen":
			handleGen(tree, args, rng)
		case "dump":
			handleDump(cfg)
		case "height":
			fmt.Println(tree.Height())
		default:
			fmt.Printf("Unknown command: %s (try 'help')\n", cmd)
		}
	}
}

func printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  insert <key> <payload>   insert a record")
	fmt.Println("  search <key>             report whether key is present")
	fmt.Println("  remove <key>             delete a record")
	fmt.Println("  update <oldKey> <newKey> <payload>   replace a record")
	fmt.Println("  print [payloads]         parenthesized in-order traversal")
	fmt.Println("  gen <count> [maxKey]     insert count random records")
	fmt.Println("  dump                     render both files page by page")
	fmt.Println("  height                   current tree height")
	fmt.Println("  help                     show this help")
	fmt.Println("  exit                     quit")
}

func handleInsert(tree *btree.BTree, args []string) {
	if len(args) < 2 {
		fmt.Println("usage: insert <key> <payload>")
		return
	}
	key, err := parseKey(args[0])
	if err != nil {
		fmt.Println(err)
		return
	}
	report, err := tree.Insert(layout.Record{Key: key, Payload: args[1]})
	if err != nil {
		fmt.Println(describeError(err))
	} else {
		fmt.Println("OK")
	}
	printReport(report)
}

func handleSearch(tree *btree.BTree, args []string) {
	if len(args) < 1 {
		fmt.Println("usage: search <key>")
		return
	}
	key, err := parseKey(args[0])
	if err != nil {
		fmt.Println(err)
		return
	}
	found, report, err := tree.Search(key)
	if err != nil {
		fmt.Println(describeError(err))
	} else if found {
		fmt.Println("found")
	} else {
		fmt.Println("not found")
	}
	printReport(report)
}

func handleRemove(tree *btree.BTree, args []string) {
	if len(args) < 1 {
		fmt.Println("usage: remove <key>")
		return
	}
	key, err := parseKey(args[0])
	if err != nil {
		fmt.Println(err)
		return
	}
	report, err := tree.Remove(key)
	if err != nil {
		fmt.Println(describeError(err))
	} else {
		fmt.Println("OK")
	}
	printReport(report)
}

func handleUpdate(tree *btree.BTree, args []string) {
	if len(args) < 3 {
		fmt.Println("usage: update <oldKey> <newKey> <payload>")
		return
	}
	oldKey, err := parseKey(args[0])
	if err != nil {
		fmt.Println(err)
		return
	}
	newKey, err := parseKey(args[1])
	if err != nil {
		fmt.Println(err)
		return
	}
	report, err := tree.Update(oldKey, layout.Record{Key: newKey, Payload: args[2]})
	if err != nil {
		fmt.Println(describeError(err))
	} else {
		fmt.Println("OK")
	}
	printReport(report)
}

func handlePrint(tree *btree.BTree, args []string) {
	withPayloads := len(args) > 0 && strings.EqualFold(args[0], "payloads")
	s, report, err := tree.Print(withPayloads)
	if err != nil {
		fmt.Println(describeError(err))
	} else {
		fmt.Println(s)
	}
	printReport(report)
}

func handleGen(tree *btree.BTree, args []string, rng *rand.Rand) {
	if len(args) < 1 {
		fmt.Println("usage: gen <count> [maxKey]")
		return
	}
	count, err := strconv.Atoi(args[0])
	if err != nil || count < 0 {
		fmt.Println("invalid count:", args[0])
		return
	}
	maxKey := int32(count * 10)
	if len(args) > 1 {
		m, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Println("invalid maxKey:", args[1])
			return
		}
		maxKey = int32(m)
	}

	inserted, skipped := 0, 0
	var report = tree.Report()
	for i := 0; i < count; i++ {
		key := genrecord.Key(rng, maxKey)
		rec := genrecord.Record(rng, key)
		var err error
		report, err = tree.Insert(rec)
		if err != nil {
			skipped++
			continue
		}
		inserted++
	}
	fmt.Printf("inserted=%d skipped=%d\n", inserted, skipped)
	printReport(report)
}

func handleDump(cfg config.Config) {
	idx, err := dump.IndexFile(cfg.IndexPath, cfg.Order)
	if err != nil {
		fmt.Println(err)
		return
	}
	data, err := dump.DataFile(cfg.DataPath, cfg.Order)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Print(idx)
	fmt.Print(data)
}

func parseKey(s string) (int32, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid key %q: %w", s, err)
	}
	return int32(n), nil
}

func describeError(err error) string {
	switch {
	case errors.Is(err, btree.ErrDuplicateKey):
		return "Record already exists!"
	case errors.Is(err, btree.ErrKeyNotFound):
		return "No record with that key"
	case errors.Is(err, btree.ErrEmptyTree):
		return "Tree is empty"
	case errors.Is(err, layout.ErrReservedKey), errors.Is(err, layout.ErrPayloadChar):
		return err.Error()
	default:
		return "Error: " + err.Error()
	}
}
