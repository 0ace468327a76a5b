package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/robheffo79/SpinoDB/pkg/database"
)

const version = "0.1.0"

const help = `Commands:
  help                          show this help
  exit, quit                    leave the shell
  save <path>                   write a snapshot (.gz/.zst compresses)
  load <path>                   restore a snapshot
  collections                   list collections
  use <collection>              set the default collection
  <json command>                raw dispatcher command, e.g.
                                {"cmd":"append","collection":"users","document":{"name":"sam"}}

When a default collection is set, shorthand commands are available:
  append <json>                 findone <query>
  find <query> [limit]          drop <query> [limit]
  index <field>                 size
`

type shell struct {
	db          *database.Database
	currentColl string
	scanner     *bufio.Scanner
}

func main() {
	dataFile := flag.String("data", "", "snapshot file to load on start and save on exit")
	flag.Parse()

	db := database.New()
	if *dataFile != "" {
		if _, err := os.Stat(*dataFile); err == nil {
			if err := db.Load(*dataFile); err != nil {
				fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", *dataFile, err)
				os.Exit(1)
			}
		}
	}

	sh := &shell{db: db, scanner: bufio.NewScanner(os.Stdin)}
	fmt.Printf("SpinoDB shell v%s — type 'help' for commands\n", version)
	sh.run()

	if *dataFile != "" {
		if err := db.Save(*dataFile); err != nil {
			fmt.Fprintf(os.Stderr, "failed to save %s: %v\n", *dataFile, err)
			os.Exit(1)
		}
	}
}

func (s *shell) run() {
	for {
		prompt := "spino> "
		if s.currentColl != "" {
			prompt = fmt.Sprintf("spino:%s> ", s.currentColl)
		}
		fmt.Print(prompt)

		if !s.scanner.Scan() {
			fmt.Println()
			return
		}
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return
		}
		s.execute(line)
	}
}

func (s *shell) execute(line string) {
	// Raw dispatcher commands pass straight through
	if strings.HasPrefix(line, "{") {
		printReply(s.db.Execute(line))
		return
	}

	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "help":
		fmt.Print(help)
	case "collections":
		printReply(s.db.Execute(`{"cmd":"listCollections"}`))
	case "use":
		if rest == "" {
			fmt.Println("usage: use <collection>")
			return
		}
		s.currentColl = rest
	case "save", "load":
		if rest == "" {
			fmt.Printf("usage: %s <path>\n", cmd)
			return
		}
		printReply(s.db.Execute(fmt.Sprintf(`{"cmd":%q,"path":%q}`, cmd, rest)))
	case "append", "findone", "find", "drop", "index", "size":
		if s.currentColl == "" {
			fmt.Println("no collection selected, run: use <collection>")
			return
		}
		s.executeShorthand(cmd, rest)
	default:
		fmt.Printf("unknown command %q, type 'help'\n", cmd)
	}
}

func (s *shell) executeShorthand(cmd, rest string) {
	switch cmd {
	case "append":
		printReply(s.db.Execute(s.command("append", "document", rest, 0)))
	case "findone":
		printReply(s.db.Execute(s.command("findOne", "query", rest, 0)))
	case "find":
		query, limit := splitLimit(rest)
		printReply(s.db.Execute(s.command("find", "query", query, limit)))
	case "drop":
		query, limit := splitLimit(rest)
		printReply(s.db.Execute(s.command("drop", "query", query, limit)))
	case "index":
		printReply(s.db.Execute(fmt.Sprintf(`{"cmd":"createIndex","collection":%q,"field":%q}`, s.currentColl, rest)))
	case "size":
		printReply(s.db.Execute(fmt.Sprintf(`{"cmd":"size","collection":%q}`, s.currentColl)))
	}
}

// command assembles a dispatcher command with one raw JSON argument
func (s *shell) command(name, argKey, argJSON string, limit int) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `{"cmd":%q,"collection":%q,%q:%s`, name, s.currentColl, argKey, argJSON)
	if limit > 0 {
		fmt.Fprintf(&buf, `,"limit":%d`, limit)
	}
	buf.WriteByte('}')
	return buf.String()
}

// splitLimit peels a trailing integer limit off a query argument
func splitLimit(rest string) (string, int) {
	idx := strings.LastIndexByte(rest, '}')
	if idx < 0 || idx == len(rest)-1 {
		return rest, 0
	}
	var limit int
	if _, err := fmt.Sscanf(strings.TrimSpace(rest[idx+1:]), "%d", &limit); err != nil {
		return rest, 0
	}
	return rest[:idx+1], limit
}

// printReply pretty-prints JSON replies when possible
func printReply(reply string) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(reply), "", "  "); err != nil {
		fmt.Println(reply)
		return
	}
	fmt.Println(buf.String())
}
