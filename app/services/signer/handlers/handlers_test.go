package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/helios-protocol/microblock/app/services/signer/handlers"
	"github.com/helios-protocol/microblock/business/core/blocksign"
	"github.com/helios-protocol/microblock/business/web/errs"
	"github.com/helios-protocol/microblock/foundation/blockchain/fork"
	"github.com/helios-protocol/microblock/foundation/blockchain/genesis"
	"github.com/helios-protocol/microblock/foundation/events"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	pkHexKey   = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	parentHash = "0x0f6887ac85101d6d6425a617edf35bd721b5f619fb92c36c3d2224e3bdb0ee5a"
	toAddress  = "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32"
)

// =============================================================================

func Test_Sign(t *testing.T) {
	app := newApp(t)

	t.Log("Given the need to sign blocks over http.")
	{
		t.Logf("\tTest 0:\tWhen the request is valid.")
		{
			w := call(app, http.MethodPost, "/v1/block/sign", signDoc(parentHash, pkHexKey))
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest 0:\tShould receive a status code of 200, got %d: %s", failed, w.Code, w.Body)
			}
			t.Logf("\t%s\tTest 0:\tShould receive a status code of 200.", success)

			var res blocksign.Result
			if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to unmarshal the response: %v", failed, err)
			}

			if !strings.HasPrefix(res.RawBlock, "0x") || len(res.SendTxHashes) != 1 || res.Fork != fork.Photon {
				t.Fatalf("\t%s\tTest 0:\tShould get back the signed block: %+v", failed, res)
			}
			t.Logf("\t%s\tTest 0:\tShould get back the signed block.", success)

			doc := `{"rawBlock":"` + res.RawBlock + `","chainId":1}`
			w = call(app, http.MethodPost, "/v1/block/decode", doc)
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest 0:\tShould be able to decode the block, got %d: %s", failed, w.Code, w.Body)
			}

			var d struct {
				BlockHash string `json:"blockHash"`
			}
			if err := json.NewDecoder(w.Body).Decode(&d); err != nil || d.BlockHash != res.BlockHash.Hex() {
				t.Fatalf("\t%s\tTest 0:\tShould get back the same block hash: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to decode the block.", success)
		}
	}
}

func Test_SignFailures(t *testing.T) {
	app := newApp(t)

	tt := []struct {
		name   string
		doc    string
		status int
		field  string
	}{
		{name: "missing-parent", doc: signDoc("", pkHexKey), status: http.StatusBadRequest, field: "parentHash"},
		{name: "missing-key", doc: signDoc(parentHash, ""), status: http.StatusBadRequest, field: "privateKey"},
		{name: "bad-key", doc: signDoc(parentHash, "1234"), status: http.StatusUnprocessableEntity, field: "privateKey"},
		{name: "bad-json", doc: `{"header":`, status: http.StatusBadRequest},
		{name: "unknown-field", doc: `{"extra":1}`, status: http.StatusBadRequest},
	}

	t.Log("Given the need to report failures to the client.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				w := call(app, http.MethodPost, "/v1/block/sign", tst.doc)
				if w.Code != tst.status {
					t.Fatalf("\t%s\tTest %d:\tShould receive a status code of %d, got %d: %s", failed, testID, tst.status, w.Code, w.Body)
				}
				t.Logf("\t%s\tTest %d:\tShould receive a status code of %d.", success, testID, tst.status)

				var resp errs.Response
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to unmarshal the response: %v", failed, testID, err)
				}

				if tst.field != "" {
					if _, exists := resp.Fields[tst.field]; !exists {
						t.Fatalf("\t%s\tTest %d:\tShould name the %s field: %+v", failed, testID, tst.field, resp)
					}
					t.Logf("\t%s\tTest %d:\tShould name the %s field.", success, testID, tst.field)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_Fork(t *testing.T) {
	app := newApp(t)

	tt := []struct {
		path   string
		status int
		fork   string
	}{
		{path: "/v1/forks/1/1561939199", status: http.StatusOK, fork: "boson"},
		{path: "/v1/forks/1/1561939200", status: http.StatusOK, fork: "photon"},
		{path: "/v1/forks/0/1561939200", status: http.StatusBadRequest},
		{path: "/v1/forks/1/soon", status: http.StatusBadRequest},
	}

	t.Log("Given the need to look up the active fork.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				w := call(app, http.MethodGet, tst.path, "")
				if w.Code != tst.status {
					t.Fatalf("\t%s\tTest %d:\tShould receive a status code of %d, got %d.", failed, testID, tst.status, w.Code)
				}
				t.Logf("\t%s\tTest %d:\tShould receive a status code of %d.", success, testID, tst.status)

				if tst.fork == "" {
					return
				}

				var info struct {
					Fork string `json:"fork"`
				}
				if err := json.NewDecoder(w.Body).Decode(&info); err != nil || info.Fork != tst.fork {
					t.Fatalf("\t%s\tTest %d:\tShould select %s: %v", failed, testID, tst.fork, err)
				}
				t.Logf("\t%s\tTest %d:\tShould select %s.", success, testID, tst.fork)
			}

			t.Run(tst.path, f)
		}
	}
}

func Test_Debug(t *testing.T) {
	mux := handlers.DebugMux("test", zap.NewNop().Sugar())

	t.Log("Given the need to check the service health.")
	{
		for testID, path := range []string{"/debug/readiness", "/debug/liveness", "/metrics"} {
			r := httptest.NewRequest(http.MethodGet, path, nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, r)

			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest %d:\tShould receive a status code of 200 for %s, got %d.", failed, testID, path, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould receive a status code of 200 for %s.", success, testID, path)
		}
	}
}

// =============================================================================

func newApp(t *testing.T) http.Handler {
	gen := genesis.Default()

	core, err := blocksign.NewCore(blocksign.Config{
		Schedule: gen,
	})
	if err != nil {
		t.Fatalf("Should be able to construct the core: %s", err)
	}

	return handlers.APIMux(handlers.APIMuxConfig{
		Shutdown:   make(chan os.Signal, 1),
		Log:        zap.NewNop().Sugar(),
		Core:       core,
		Schedule:   gen,
		Evts:       events.New(),
		CorsOrigin: "*",
	})
}

func call(app http.Handler, method string, path string, doc string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, bytes.NewBufferString(doc))
	w := httptest.NewRecorder()
	app.ServeHTTP(w, r)
	return w
}

func signDoc(parent string, key string) string {
	header := `{"blockNumber":"0x1"}`
	if parent != "" {
		header = `{"parentHash":"` + parent + `","blockNumber":"0x1"}`
	}

	privateKey := ""
	if key != "" {
		privateKey = `,"privateKey":"` + key + `"`
	}

	return `{
		"header": ` + header + `,
		"sendTransactions": [{"nonce": 0, "gasPrice": "0x3b9aca01", "gas": 21000, "to": "` + toAddress + `", "value": 1000}],
		"receiveTransactions": [],
		"timestamp": 1600000000` + privateKey + `
	}`
}
