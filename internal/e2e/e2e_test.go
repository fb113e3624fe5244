package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"modelreg/internal/engine/enginetest"
	"modelreg/pkg/types"
)

func TestE2E_Models_Load_Decode_Status(t *testing.T) {
	dir, models := createTempModelsDir(t, "alpha.gguf", "beta.Q4_K_M.gguf")
	eng := enginetest.New(10, 11, 12)
	srv, _ := newServerForDir(t, dir, eng)

	// 1) GET /models returns discovered models
	resp, body := httpGet(t, srv.URL+"/models")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/models status=%d body=%s", resp.StatusCode, string(body))
	}
	var modelsResp types.ModelsResponse
	if err := json.Unmarshal(body, &modelsResp); err != nil {
		t.Fatalf("/models json: %v body=%s", err, string(body))
	}
	if len(modelsResp.Models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(modelsResp.Models))
	}

	// 2) Nothing is loaded yet.
	resp, body = httpGet(t, srv.URL+"/readyz")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("/readyz expected 503, got %d body=%s", resp.StatusCode, string(body))
	}

	// 3) Load both by catalog id; the second by name under a custom handle id.
	resp, body = httpPostJSON(t, srv.URL+"/handles", []byte(fmt.Sprintf(`{"id":%q}`, models[0])))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("load alpha status=%d body=%s", resp.StatusCode, string(body))
	}
	resp, body = httpPostJSON(t, srv.URL+"/handles", []byte(`{"id":"beta","model":"beta.Q4_K_M","gpu_layers":8}`))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("load beta status=%d body=%s", resp.StatusCode, string(body))
	}
	if loc := resp.Header.Get("Location"); loc != "/handles/beta" {
		t.Fatalf("unexpected Location %q", loc)
	}
	if got := eng.LastModelParams().GPULayers; got != 8 {
		t.Fatalf("gpu_layers not applied: %d", got)
	}

	resp, _ = httpGet(t, srv.URL+"/readyz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/readyz expected 200 after load, got %d", resp.StatusCode)
	}

	// 4) Decode with a length limit: the prompt is 3 tokens with BOS, so
	// max_len 5 leaves room for two generated tokens.
	resp, body = httpPostJSON(t, srv.URL+"/handles/beta/decode", []byte(`{"prompt":"once upon","max_len":5}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("decode status=%d body=%s", resp.StatusCode, string(body))
	}
	lines := bytes.Split(bytes.TrimSpace(body), []byte("\n"))
	if len(lines) != 3 {
		t.Fatalf("expected 2 tokens and a done line, got %q", string(body))
	}
	var done types.DecodeDone
	if err := json.Unmarshal(lines[2], &done); err != nil {
		t.Fatalf("done json: %v", err)
	}
	if !done.Done || done.StopReason != "length" || done.CompletionTokens != 2 || done.PromptTokens != 3 {
		t.Fatalf("unexpected done line: %+v", done)
	}
	if done.Content != " t10 t11" {
		t.Fatalf("unexpected content %q", done.Content)
	}

	// 5) A context too small for the prompt fails before any decode.
	before := eng.Decodes()
	long := strings.TrimSpace(strings.Repeat("w ", 2100))
	resp, body = httpPostJSON(t, srv.URL+"/handles/alpha.gguf/decode", []byte(fmt.Sprintf(`{"prompt":%q}`, long)))
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("capacity status=%d body=%s", resp.StatusCode, string(body))
	}
	if eng.Decodes() != before {
		t.Fatalf("decode ran despite insufficient cache")
	}

	// 6) /status reflects the handles and counters.
	resp, body = httpGet(t, srv.URL+"/status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/status status=%d body=%s", resp.StatusCode, string(body))
	}
	var st types.StatusResponse
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("/status json: %v body=%s", err, string(body))
	}
	if len(st.Handles) != 2 || st.LoadsTotal != 2 || st.DecodesTotal != 1 || st.State != "ready" {
		t.Fatalf("unexpected status: %+v", st)
	}
	if st.Backend != "fake" || st.LastError == "" {
		t.Fatalf("unexpected backend/last_error: %q %q", st.Backend, st.LastError)
	}

	// 7) /metrics exposes the registry gauge.
	_, body = httpGet(t, srv.URL+"/metrics")
	if !bytes.Contains(body, []byte("modelreg_registry_handles")) {
		t.Fatalf("registry gauge missing from /metrics")
	}
}

func TestE2E_ConcurrentDecodesAndUnload(t *testing.T) {
	dir, _ := createTempModelsDir(t, "alpha.gguf")
	eng := enginetest.New(10, 11, 12, 13)
	srv, _ := newServerForDir(t, dir, eng)

	resp, body := httpPostJSON(t, srv.URL+"/handles", []byte(`{"id":"alpha.gguf"}`))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("load status=%d body=%s", resp.StatusCode, string(body))
	}

	// Decodes racing an unload either complete or see 404; none may fail
	// any other way and the model must be released at the end.
	var wg sync.WaitGroup
	codes := make(chan int, 9)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, _ := httpPostJSON(t, srv.URL+"/handles/alpha.gguf/decode", []byte(`{"prompt":"hi"}`))
			codes <- resp.StatusCode
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		resp, _ := httpDo(t, http.MethodDelete, srv.URL+"/handles/alpha.gguf", nil)
		codes <- resp.StatusCode
	}()
	wg.Wait()
	close(codes)

	for c := range codes {
		switch c {
		case http.StatusOK, http.StatusNotFound, http.StatusNoContent:
		default:
			t.Fatalf("unexpected status %d", c)
		}
	}
	if eng.OpenModels() != 0 || eng.OpenContexts() != 0 {
		t.Fatalf("leaked models=%d contexts=%d", eng.OpenModels(), eng.OpenContexts())
	}
}
