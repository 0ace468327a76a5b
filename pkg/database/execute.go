package database

import (
	"bytes"
	"fmt"

	"github.com/robheffo79/SpinoDB/pkg/document"
)

// Execute is a string-in/string-out façade over the database: one JSON
// command object per call, one JSON reply. Status replies carry a
// "msg" member (plus command-specific members), failures an "error"
// member; counting commands reply {"count": n}, listCollections replies
// {"collections": [...]}, and query commands return their result
// document(s) directly.
func (db *Database) Execute(command string) string {
	cmd, err := document.Parse(command)
	if err != nil {
		return makeReply(false, fmt.Sprintf("invalid command: %v", err))
	}

	name, ok := stringField(cmd, "cmd")
	if !ok {
		return makeReply(false, "missing field cmd")
	}

	switch name {
	case "listCollections":
		names := db.ListCollections()
		arr := make([]interface{}, len(names))
		for i, n := range names {
			arr[i] = n
		}
		return listReply(arr)
	case "dropCollection":
		coll, reply := db.requireCollectionName(cmd)
		if reply != "" {
			return reply
		}
		if err := db.DropCollection(coll); err != nil {
			return makeReply(false, err.Error())
		}
		return makeReply(true, "collection dropped")
	case "save":
		path, ok := stringField(cmd, "path")
		if !ok {
			return makeReply(false, "missing field path")
		}
		if err := db.Save(path); err != nil {
			return makeReply(false, err.Error())
		}
		return makeReply(true, "saved")
	case "load":
		path, ok := stringField(cmd, "path")
		if !ok {
			return makeReply(false, "missing field path")
		}
		if err := db.Load(path); err != nil {
			return makeReply(false, err.Error())
		}
		return makeReply(true, "loaded")
	}

	// Everything else operates on one collection
	collName, reply := db.requireCollectionName(cmd)
	if reply != "" {
		return reply
	}
	coll := db.Collection(collName)

	switch name {
	case "append":
		doc, ok := documentField(cmd, "document")
		if !ok {
			return makeReply(false, "missing field document")
		}
		id := coll.Append(doc)
		return idReply("appended", id)
	case "size":
		return countReply(coll.Size())
	case "createIndex":
		field, ok := stringField(cmd, "field")
		if !ok {
			return makeReply(false, "missing field field")
		}
		coll.CreateIndex(field)
		return makeReply(true, "index created")
	case "dropIndex":
		field, ok := stringField(cmd, "field")
		if !ok {
			return makeReply(false, "missing field field")
		}
		if err := coll.DropIndex(field); err != nil {
			return makeReply(false, err.Error())
		}
		return makeReply(true, "index dropped")
	case "findOneById":
		id, ok := stringField(cmd, "id")
		if !ok {
			return makeReply(false, "missing field id")
		}
		if result := coll.FindOneByID(id); result != "" {
			return result
		}
		return makeReply(false, "document not found")
	case "findOne":
		q, ok := queryField(cmd, "query")
		if !ok {
			return makeReply(false, "missing field query")
		}
		if result := coll.FindOne(q); result != "" {
			return result
		}
		return makeReply(false, "no matching document")
	case "find":
		q, ok := queryField(cmd, "query")
		if !ok {
			return makeReply(false, "missing field query")
		}
		cursor, err := coll.Find(q, intField(cmd, "limit"))
		if err != nil {
			return makeReply(false, err.Error())
		}
		return drainCursor(cursor)
	case "updateById":
		id, ok := stringField(cmd, "id")
		if !ok {
			return makeReply(false, "missing field id")
		}
		patch, ok := queryField(cmd, "update")
		if !ok {
			return makeReply(false, "missing field update")
		}
		if err := coll.UpdateByID(id, patch); err != nil {
			return makeReply(false, err.Error())
		}
		return makeReply(true, "updated")
	case "update":
		q, ok := queryField(cmd, "query")
		if !ok {
			return makeReply(false, "missing field query")
		}
		patch, ok := queryField(cmd, "update")
		if !ok {
			return makeReply(false, "missing field update")
		}
		count, err := coll.Update(q, patch)
		if err != nil {
			return makeReply(false, err.Error())
		}
		return countReply(count)
	case "dropById":
		id, ok := stringField(cmd, "id")
		if !ok {
			return makeReply(false, "missing field id")
		}
		if err := coll.DropByID(id); err != nil {
			return makeReply(false, err.Error())
		}
		return makeReply(true, "dropped")
	case "dropOne":
		q, ok := queryField(cmd, "query")
		if !ok {
			return makeReply(false, "missing field query")
		}
		count, err := coll.DropOne(q)
		if err != nil {
			return makeReply(false, err.Error())
		}
		return countReply(count)
	case "drop":
		q, ok := queryField(cmd, "query")
		if !ok {
			return makeReply(false, "missing field query")
		}
		count, err := coll.Drop(q, intField(cmd, "limit"))
		if err != nil {
			return makeReply(false, err.Error())
		}
		return countReply(count)
	case "dropOlderThan":
		ms, ok := numberField(cmd, "timestamp")
		if !ok {
			return makeReply(false, "missing field timestamp")
		}
		return countReply(coll.DropOlderThan(int64(ms)))
	default:
		return makeReply(false, fmt.Sprintf("unknown command %q", name))
	}
}

func (db *Database) requireCollectionName(cmd *document.Document) (string, string) {
	name, ok := stringField(cmd, "collection")
	if !ok {
		return "", makeReply(false, "missing field collection")
	}
	return name, ""
}

func makeReply(success bool, msg string) string {
	reply := document.NewDocument()
	if success {
		reply.Set("msg", msg)
	} else {
		reply.Set("error", msg)
	}
	return reply.JSON()
}

func idReply(msg, id string) string {
	reply := document.NewDocument()
	reply.Set("msg", msg)
	reply.Set("id", id)
	return reply.JSON()
}

func countReply(count int) string {
	reply := document.NewDocument()
	reply.Set("count", float64(count))
	return reply.JSON()
}

func listReply(items []interface{}) string {
	reply := document.NewDocument()
	reply.Set("collections", items)
	return reply.JSON()
}

// drainCursor assembles a cursor's yields into a JSON array
func drainCursor(cursor Cursor) string {
	var buf bytes.Buffer
	buf.WriteByte('[')
	first := true
	for cursor.HasNext() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteString(cursor.Next())
	}
	buf.WriteByte(']')
	return buf.String()
}

func stringField(cmd *document.Document, key string) (string, bool) {
	v, ok := cmd.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func numberField(cmd *document.Document, key string) (float64, bool) {
	v, ok := cmd.Get(key)
	if !ok {
		return 0, false
	}
	n, ok := v.(float64)
	return n, ok
}

// intField reads an optional numeric field, returning 0 (no limit)
// when absent
func intField(cmd *document.Document, key string) int {
	n, ok := numberField(cmd, key)
	if !ok {
		return 0
	}
	return int(n)
}

func documentField(cmd *document.Document, key string) (*document.Document, bool) {
	v, ok := cmd.Get(key)
	if !ok {
		return nil, false
	}
	doc, ok := v.(*document.Document)
	return doc, ok
}

// queryField accepts either an embedded object or a pre-serialized
// string for query and patch arguments
func queryField(cmd *document.Document, key string) (string, bool) {
	v, ok := cmd.Get(key)
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case *document.Document:
		return val.JSON(), true
	default:
		return "", false
	}
}
