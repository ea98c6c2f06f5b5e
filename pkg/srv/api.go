/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

// go-manta API
//
// # RESTful APIs to drive Manta debug cores through go-manta server
//
// Schemes: http
// Host: localhost:8003
// Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package srv

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-openapi/loads"
	"github.com/go-openapi/runtime/middleware"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"jinr.ru/greenlab/go-manta/pkg/capture"
	"jinr.ru/greenlab/go-manta/pkg/config"
	"jinr.ru/greenlab/go-manta/pkg/la"
	"jinr.ru/greenlab/go-manta/pkg/log"
	"jinr.ru/greenlab/go-manta/pkg/manta"
	"jinr.ru/greenlab/go-manta/pkg/srv/ifc"
	"jinr.ru/greenlab/go-manta/pkg/store"
)

const (
	SwaggerPath = "/swagger.json"
	DocsPath    = "docs"
)

//go:embed swagger.json
var swaggerJSON []byte

// ApiServer serializes every request that touches the bus since the
// transport can not be shared.
type ApiServer struct {
	context.Context
	*config.Config
	*mux.Router
	mu    sync.Mutex
	manta *manta.Manta
	store *store.CaptureStore
	doc   *loads.Document
}

var _ ifc.ApiServer = &ApiServer{}

// NewApiServer returns a server for the composed design. Captures are
// persisted when st is not nil.
func NewApiServer(ctx context.Context, cfg *config.Config, m *manta.Manta, st *store.CaptureStore) (*ApiServer, error) {
	log.Info("Initializing API server with address: %s port: %d", cfg.ApiAddress, cfg.ApiPort)
	doc, err := loads.Analyzed(swaggerJSON, "")
	if err != nil {
		return nil, errors.Wrap(err, "loading API description")
	}
	s := &ApiServer{
		Context: ctx,
		Config:  cfg,
		manta:   m,
		store:   st,
		doc:     doc,
	}
	s.configureRouter()
	return s, nil
}

// Handler returns the router wrapped with request logging and panic recovery
func (s *ApiServer) Handler() http.Handler {
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(log.Enabled(log.DebugLevel)))(
		handlers.LoggingHandler(log.Writer(log.DebugLevel), s.Router))
}

// Run serves until the context is cancelled
func (s *ApiServer) Run() error {
	addr := fmt.Sprintf("%s:%d", s.Config.ApiAddress, s.Config.ApiPort)
	log.Info("Starting API server: address: %s", addr)
	for _, e := range s.manta.AddressMap() {
		log.Info("Serving %s", e)
	}
	httpServer := &http.Server{
		Handler: s.Handler(),
		Addr:    addr,
	}
	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.ListenAndServe()
	}()
	select {
	case <-s.Context.Done():
		log.Info("Stopping API server")
		return httpServer.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

func (s *ApiServer) configureRouter() {
	s.Router = mux.NewRouter()
	subRouter := s.Router.PathPrefix("/api").Subrouter()
	subRouter.HandleFunc("/cores", s.handleCores()).Methods("GET")
	subRouter.HandleFunc("/io/{core}/{probe}", s.handleProbeGet()).Methods("GET")
	subRouter.HandleFunc("/io/{core}/{probe}", s.handleProbeSet()).Methods("POST")
	subRouter.HandleFunc("/mem/{core}/read", s.handleMemRead()).Methods("POST")
	subRouter.HandleFunc("/mem/{core}/write", s.handleMemWrite()).Methods("POST")
	subRouter.HandleFunc("/la/{core}/capture", s.handleCapture()).Methods("POST")
	subRouter.HandleFunc("/la/{core}/captures", s.handleCaptureList()).Methods("GET")
	subRouter.HandleFunc("/la/{core}/captures/{id:[0-9]+}", s.handleCaptureGet()).Methods("GET")
	subRouter.HandleFunc("/la/{core}/captures/{id:[0-9]+}", s.handleCaptureDelete()).Methods("DELETE")
	subRouter.HandleFunc("/la/{core}/captures/{id:[0-9]+}/{format:vcd|csv|v}", s.handleCaptureExport()).Methods("GET")
	s.Router.HandleFunc(SwaggerPath, s.handleSwagger()).Methods("GET")
	s.Router.PathPrefix("/" + DocsPath).Handler(middleware.Redoc(middleware.RedocOpts{
		Path:    DocsPath,
		SpecURL: SwaggerPath,
		Title:   s.doc.Spec().Info.Title,
	}, http.NotFoundHandler()))
}

// status maps an error to the HTTP status reported to clients
func status(err error) int {
	var errUnknown manta.ErrUnknownCore
	var errNotFound store.ErrNotFound
	var errType manta.ErrCoreType
	var errConfig config.ErrConfig
	switch {
	case errors.As(err, &errUnknown), errors.As(err, &errNotFound):
		return http.StatusNotFound
	case errors.As(err, &errType), errors.As(err, &errConfig):
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

func httpError(w http.ResponseWriter, err error) {
	code := status(err)
	log.Debug("Request failed with %d: %s", code, err)
	http.Error(w, err.Error(), code)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response: %s", err)
	}
}

func parseValue(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, config.NewErrConfig("%q is not an integer", s)
	}
	return v, nil
}

func (s *ApiServer) handleCores() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.manta.MemoryMapDescription())
	}
}

func (s *ApiServer) handleProbeGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		log.Debug("Handling probe get request: core: %s probe: %s", vars["core"], vars["probe"])

		io, err := s.manta.Cores().IO(vars["core"])
		if err != nil {
			httpError(w, err)
			return
		}
		if _, err := io.FindProbe(vars["probe"]); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		s.mu.Lock()
		value, err := io.GetProbe(vars["probe"])
		s.mu.Unlock()
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, &ProbeValue{Value: value.String()})
	}
}

func (s *ApiServer) handleProbeSet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)

		pv := &ProbeValue{}
		if err := json.NewDecoder(r.Body).Decode(pv); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Debug("Handling probe set request: core: %s probe: %s value: %s", vars["core"], vars["probe"], pv.Value)

		value, err := parseValue(pv.Value)
		if err != nil {
			httpError(w, err)
			return
		}
		io, err := s.manta.Cores().IO(vars["core"])
		if err != nil {
			httpError(w, err)
			return
		}
		if _, err := io.FindProbe(vars["probe"]); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		s.mu.Lock()
		err = io.SetProbe(vars["probe"], value)
		s.mu.Unlock()
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, pv)
	}
}

func (s *ApiServer) handleMemRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)

		req := &MemRead{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mem, err := s.manta.Cores().Memory(vars["core"])
		if err != nil {
			httpError(w, err)
			return
		}

		s.mu.Lock()
		values, err := mem.Read(req.Addrs)
		s.mu.Unlock()
		if err != nil {
			httpError(w, err)
			return
		}
		resp := &MemData{Data: make([]string, len(values))}
		for i, v := range values {
			resp.Data[i] = v.String()
		}
		writeJSON(w, resp)
	}
}

func (s *ApiServer) handleMemWrite() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)

		req := &MemWrite{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		values := make([]*big.Int, len(req.Data))
		for i, d := range req.Data {
			v, err := parseValue(d)
			if err != nil {
				httpError(w, err)
				return
			}
			values[i] = v
		}
		mem, err := s.manta.Cores().Memory(vars["core"])
		if err != nil {
			httpError(w, err)
			return
		}

		s.mu.Lock()
		err = mem.Write(req.Addrs, values)
		s.mu.Unlock()
		if err != nil {
			httpError(w, err)
			return
		}
	}
}

func (s *ApiServer) handleCapture() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		log.Debug("Handling capture request: core: %s", vars["core"])

		req := &CaptureRequest{}
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		l, err := s.manta.Cores().LogicAnalyzer(vars["core"])
		if err != nil {
			httpError(w, err)
			return
		}
		c, err := s.capture(l, req)
		if err != nil {
			httpError(w, err)
			return
		}

		record := c.Record()
		if s.store != nil {
			id, err := s.store.Save(c)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			record.ID = id
		}
		writeJSON(w, record)
	}
}

func (s *ApiServer) capture(l *la.Core, req *CaptureRequest) (*capture.Capture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := req.Apply(l); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(s.Context, req.CaptureTimeout())
	defer cancel()
	return l.Capture(ctx)
}

func (s *ApiServer) checkStore(w http.ResponseWriter, coreName string) bool {
	if s.store == nil {
		http.Error(w, "captures are not stored by this server", http.StatusNotFound)
		return false
	}
	if _, err := s.manta.Cores().LogicAnalyzer(coreName); err != nil {
		httpError(w, err)
		return false
	}
	return true
}

func (s *ApiServer) handleCaptureList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		if !s.checkStore(w, vars["core"]) {
			return
		}
		summaries, err := s.store.List(vars["core"])
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, summaries)
	}
}

func (s *ApiServer) handleCaptureGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		if !s.checkStore(w, vars["core"]) {
			return
		}
		id, err := strconv.ParseUint(vars["id"], 10, 64)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		record, err := s.store.LoadRecord(vars["core"], id)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, record)
	}
}

func (s *ApiServer) handleCaptureDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		if !s.checkStore(w, vars["core"]) {
			return
		}
		id, err := strconv.ParseUint(vars["id"], 10, 64)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Debug("Handling capture delete request: core: %s id: %d", vars["core"], id)
		if err := s.store.Delete(vars["core"], id); err != nil {
			httpError(w, err)
			return
		}
	}
}

func (s *ApiServer) handleCaptureExport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		if !s.checkStore(w, vars["core"]) {
			return
		}
		id, err := strconv.ParseUint(vars["id"], 10, 64)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		c, err := s.store.Load(vars["core"], id)
		if err != nil {
			httpError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		switch vars["format"] {
		case "vcd":
			err = c.WriteVCD(w)
		case "csv":
			err = c.WriteCSV(w)
		case "v":
			err = c.WritePlaybackVerilog(w)
		}
		if err != nil {
			log.Error("Failed to export capture %d of %s: %s", id, vars["core"], err)
		}
	}
}

func (s *ApiServer) handleSwagger() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.doc.Spec())
	}
}
