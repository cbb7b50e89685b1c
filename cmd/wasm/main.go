//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"syscall/js"

	"github.com/inamate/figconv/internal/convert"
	"github.com/inamate/figconv/internal/document"
	"github.com/inamate/figconv/internal/normalize"
)

var converter *convert.Converter

func main() {
	converter = convert.New()

	api := js.Global().Get("Object").New()

	// --- Conversions (return Promises) ---
	api.Set("convertHTML", js.FuncOf(convertWith(convert.ModeHTML)))
	api.Set("convertBlocks", js.FuncOf(convertWith(convert.ModeBlocks)))

	// --- Queries ---
	api.Set("normalize", js.FuncOf(normalizeDocument))
	api.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))

	js.Global().Set("figconv", api)

	// Signal that WASM is ready
	js.Global().Set("figconvWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorResult(err error) js.Value {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func parseArg(args []js.Value) (*document.Document, string, error) {
	if len(args) < 1 {
		return nil, "", document.ErrEmptyDocument
	}
	doc, err := document.Parse([]byte(args[0].String()))
	if err != nil {
		return nil, "", err
	}
	root := ""
	if len(args) > 1 && args[1].Type() == js.TypeString {
		root = args[1].String()
	}
	return doc, root, nil
}

// convertWith returns a binding that resolves to the conversion result
// JSON. Conversions run on a goroutine since exports wait on timers, which
// would deadlock inside a synchronous callback.
func convertWith(mode convert.Mode) func(js.Value, []js.Value) interface{} {
	return func(this js.Value, args []js.Value) interface{} {
		doc, root, err := parseArg(args)
		if err != nil {
			return errorResult(err)
		}

		executor := js.FuncOf(func(this js.Value, p []js.Value) interface{} {
			resolve := p[0]
			go func() {
				res, err := converter.Convert(context.Background(), convert.Request{Document: doc, RootID: root, Mode: mode})
				if err != nil {
					resolve.Invoke(errorResult(err))
					return
				}
				data, err := json.Marshal(res)
				if err != nil {
					resolve.Invoke(errorResult(err))
					return
				}
				resolve.Invoke(js.ValueOf(string(data)))
			}()
			return nil
		})
		defer executor.Release()

		return js.Global().Get("Promise").New(executor)
	}
}

func normalizeDocument(this js.Value, args []js.Value) interface{} {
	doc, root, err := parseArg(args)
	if err != nil {
		return errorResult(err)
	}
	raw, err := convert.Request{Document: doc, RootID: root}.Root()
	if err != nil {
		return errorResult(err)
	}
	n, err := normalize.New().Normalize(raw)
	if err != nil {
		return errorResult(err)
	}
	data, err := json.Marshal(n)
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(string(data))
}

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	data, err := json.Marshal(document.NewSampleDocument())
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(string(data))
}
