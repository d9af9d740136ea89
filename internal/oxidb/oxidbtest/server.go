// Package oxidbtest runs an in-process oxidb-server double speaking the
// length-prefixed JSON protocol. It supports the subset of commands the
// repositories issue: equality queries, $set updates, single-field sort,
// skip/limit and blob buckets.
package oxidbtest

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sort"
	"strings"
	"sync"
	"testing"
)

// Server is an in-memory oxidb-server.
type Server struct {
	ln net.Listener

	mu      sync.Mutex
	nextID  int
	colls   map[string][]map[string]any
	buckets map[string]map[string]object
	fail    map[string]string
}

type object struct {
	data        []byte
	contentType string
}

// Start listens on a random loopback port and serves until the test ends.
func Start(t testing.TB) *Server {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("oxidbtest: listen: %v", err)
	}
	s := &Server{
		ln:      ln,
		colls:   make(map[string][]map[string]any),
		buckets: make(map[string]map[string]object),
		fail:    make(map[string]string),
	}
	go s.serve()
	t.Cleanup(func() { ln.Close() })
	return s
}

// Host returns the listener host.
func (s *Server) Host() string {
	host, _, _ := net.SplitHostPort(s.ln.Addr().String())
	return host
}

// Port returns the listener port.
func (s *Server) Port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

// FailCommand makes every subsequent request with the given cmd answer
// with an error message.
func (s *Server) FailCommand(cmd, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[cmd] = msg
}

// Docs returns a copy of a collection's documents.
func (s *Server) Docs(collection string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.colls[collection]))
	for _, d := range s.colls[collection] {
		out = append(out, cloneDoc(d))
	}
	return out
}

// Object returns a stored blob.
func (s *Server) Object(bucket, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.buckets[bucket][key]
	return o.data, ok
}

func (s *Server) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	for {
		var lenBuf [4]byte
		if _, err := io.ReadFull(conn, lenBuf[:]); err != nil {
			return
		}
		payload := make([]byte, binary.LittleEndian.Uint32(lenBuf[:]))
		if _, err := io.ReadFull(conn, payload); err != nil {
			return
		}
		var req map[string]any
		resp := map[string]any{"ok": true}
		if err := json.Unmarshal(payload, &req); err != nil {
			resp = map[string]any{"ok": false, "error": err.Error()}
		} else if data, err := s.dispatch(req); err != nil {
			resp = map[string]any{"ok": false, "error": err.Error()}
		} else {
			resp["data"] = data
		}
		out, _ := json.Marshal(resp)
		frame := make([]byte, 4+len(out))
		binary.LittleEndian.PutUint32(frame, uint32(len(out)))
		copy(frame[4:], out)
		if _, err := conn.Write(frame); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(req map[string]any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd, _ := req["cmd"].(string)
	if msg, ok := s.fail[cmd]; ok {
		return nil, fmt.Errorf("%s", msg)
	}
	coll, _ := req["collection"].(string)
	query, _ := req["query"].(map[string]any)

	switch cmd {
	case "ping":
		return "pong", nil
	case "create_index", "create_unique_index", "create_composite_index":
		return "ok", nil
	case "insert":
		doc, _ := req["doc"].(map[string]any)
		s.nextID++
		doc = cloneDoc(doc)
		doc["_id"] = s.nextID
		s.colls[coll] = append(s.colls[coll], doc)
		return map[string]any{"id": s.nextID}, nil
	case "find":
		docs := s.match(coll, query)
		if order, ok := req["sort"].(map[string]any); ok {
			sortDocs(docs, order)
		}
		if skip, ok := req["skip"].(float64); ok {
			if int(skip) >= len(docs) {
				docs = nil
			} else {
				docs = docs[int(skip):]
			}
		}
		if limit, ok := req["limit"].(float64); ok && int(limit) < len(docs) {
			docs = docs[:int(limit)]
		}
		return docs, nil
	case "find_one":
		docs := s.match(coll, query)
		if len(docs) == 0 {
			return nil, nil
		}
		return docs[0], nil
	case "count":
		return map[string]any{"count": len(s.match(coll, query))}, nil
	case "update_one":
		update, _ := req["update"].(map[string]any)
		set, _ := update["$set"].(map[string]any)
		for _, d := range s.colls[coll] {
			if matches(d, query) {
				for k, v := range set {
					d[k] = v
				}
				return map[string]any{"modified": 1}, nil
			}
		}
		return map[string]any{"modified": 0}, nil
	case "delete", "delete_one":
		kept := s.colls[coll][:0]
		deleted := 0
		for _, d := range s.colls[coll] {
			if matches(d, query) && (cmd == "delete" || deleted == 0) {
				deleted++
				continue
			}
			kept = append(kept, d)
		}
		s.colls[coll] = kept
		return map[string]any{"deleted": deleted}, nil
	case "create_bucket":
		bucket, _ := req["bucket"].(string)
		if _, ok := s.buckets[bucket]; !ok {
			s.buckets[bucket] = make(map[string]object)
		}
		return "ok", nil
	case "put_object":
		bucket, key := str(req, "bucket"), str(req, "key")
		b, ok := s.buckets[bucket]
		if !ok {
			return nil, fmt.Errorf("bucket not found: %s", bucket)
		}
		data, err := base64.StdEncoding.DecodeString(str(req, "data"))
		if err != nil {
			return nil, err
		}
		b[key] = object{data: data, contentType: str(req, "content_type")}
		return map[string]any{"key": key, "size": len(data)}, nil
	case "get_object":
		o, ok := s.buckets[str(req, "bucket")][str(req, "key")]
		if !ok {
			return nil, fmt.Errorf("object not found: %s", str(req, "key"))
		}
		return map[string]any{
			"content":  base64.StdEncoding.EncodeToString(o.data),
			"metadata": map[string]any{"content_type": o.contentType, "size": len(o.data)},
		}, nil
	case "delete_object":
		b := s.buckets[str(req, "bucket")]
		if _, ok := b[str(req, "key")]; !ok {
			return nil, fmt.Errorf("object not found: %s", str(req, "key"))
		}
		delete(b, str(req, "key"))
		return "ok", nil
	case "list_objects":
		prefix := str(req, "prefix")
		var out []map[string]any
		for key, o := range s.buckets[str(req, "bucket")] {
			if strings.HasPrefix(key, prefix) {
				out = append(out, map[string]any{"key": key, "size": len(o.data)})
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i]["key"].(string) < out[j]["key"].(string) })
		return out, nil
	}
	return nil, fmt.Errorf("unknown command: %s", cmd)
}

func (s *Server) match(coll string, query map[string]any) []map[string]any {
	var out []map[string]any
	for _, d := range s.colls[coll] {
		if matches(d, query) {
			out = append(out, cloneDoc(d))
		}
	}
	return out
}

func matches(doc, query map[string]any) bool {
	for k, want := range query {
		if fmt.Sprint(normalize(doc[k])) != fmt.Sprint(normalize(want)) {
			return false
		}
	}
	return true
}

func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	default:
		return v
	}
}

func sortDocs(docs []map[string]any, order map[string]any) {
	for field, dir := range order {
		desc := fmt.Sprint(dir) == "-1"
		sort.SliceStable(docs, func(i, j int) bool {
			a, b := fmt.Sprint(docs[i][field]), fmt.Sprint(docs[j][field])
			if desc {
				return a > b
			}
			return a < b
		})
	}
}

func cloneDoc(d map[string]any) map[string]any {
	out := make(map[string]any, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
