package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestReadDoc_IsValidJSON(t *testing.T) {
	doc, err := swag.ReadDoc()
	if err != nil {
		t.Fatalf("read doc: %v", err)
	}
	var v struct {
		Info  map[string]any            `json:"info"`
		Paths map[string]map[string]any `json:"paths"`
	}
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		t.Fatalf("doc is not JSON: %v", err)
	}
	if v.Info["title"] != "modelreg API" {
		t.Fatalf("unexpected title: %v", v.Info["title"])
	}
	for _, p := range []string{"/models", "/handles", "/handles/{id}", "/handles/{id}/params", "/handles/{id}/decode", "/status"} {
		if _, ok := v.Paths[p]; !ok {
			t.Fatalf("missing path %s", p)
		}
	}
	if _, ok := v.Paths["/handles/{id}/decode"]["post"]; !ok {
		t.Fatalf("decode should be a POST")
	}
}
