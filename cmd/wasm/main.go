//go:build js && wasm

package main

import (
	"encoding/json"
	"errors"
	"syscall/js"

	"cobolscan/internal/adapter/analyzer"
	"cobolscan/internal/adapter/scanner"
)

func main() {
	c := make(chan struct{})

	js.Global().Set("cobolScan", js.FuncOf(scanSource))
	js.Global().Set("cobolGraph", js.FuncOf(graphSource))

	<-c
}

// scanSource is cobolScan(content, [duplicates], [edgeOrder]).
func scanSource(this js.Value, args []js.Value) interface{} {
	sc, err := scannerFromArgs(args)
	if err != nil {
		return makeError(err.Error())
	}

	result, err := json.Marshal(sc.Scan(args[0].String()))
	if err != nil {
		return makeError("encoding failed: " + err.Error())
	}
	return string(result)
}

// graphSource is cobolGraph(content) and reports the call graph analysis.
func graphSource(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: cobolGraph(content)")
	}

	model := scanner.New(scanner.DefaultOptions()).Scan(args[0].String())
	cg, err := analyzer.BuildCallGraph(model)
	if err != nil {
		return makeError("graph failed: " + err.Error())
	}

	unreachable, err := cg.Unreachable()
	if err != nil {
		return makeError(err.Error())
	}
	cycles, err := cg.Cycles()
	if err != nil {
		return makeError(err.Error())
	}

	edges := make(map[string]interface{}, len(cg.Paragraphs()))
	for _, p := range cg.Paragraphs() {
		edges[p] = cg.Callees(p)
	}

	return makeResult(map[string]interface{}{
		"paragraphs":  cg.Paragraphs(),
		"callees":     edges,
		"unreachable": unreachable,
		"cycles":      cycles,
		"missing":     cg.Missing(),
		"external":    cg.ExternalCalls(),
	})
}

func scannerFromArgs(args []js.Value) (*scanner.Scanner, error) {
	opts := scanner.DefaultOptions()
	if len(args) < 1 {
		return nil, errUsage
	}
	if len(args) > 1 {
		policy, err := scanner.ParseDuplicatePolicy(args[1].String())
		if err != nil {
			return nil, err
		}
		opts.Duplicates = policy
	}
	if len(args) > 2 {
		order, err := scanner.ParseEdgeOrder(args[2].String())
		if err != nil {
			return nil, err
		}
		opts.EdgeOrder = order
	}
	return scanner.New(opts), nil
}

var errUsage = errors.New("usage: cobolScan(content, [duplicates], [edgeOrder])")

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
