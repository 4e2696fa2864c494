package io

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cptree/pkg/builder"
	"github.com/matzehuels/cptree/pkg/execution"
	"github.com/matzehuels/cptree/pkg/tree"
)

type searchLog struct {
	Title         string           `json:"title,omitempty"`
	Restarts      bool             `json:"restarts,omitempty"`
	Nodes         []node           `json:"nodes"`
	NogoodClauses map[int64]string `json:"nogood_clauses,omitempty"`
}

type node struct {
	ID       uint64      `json:"id"`
	PID      *uint64     `json:"pid"`
	Alt      int         `json:"alt,omitempty"`
	Kids     int         `json:"kids,omitempty"`
	Status   tree.Status `json:"status"`
	Thread   int         `json:"thread,omitempty"`
	Restart  int         `json:"restart,omitempty"`
	Label    string      `json:"label,omitempty"`
	Nogood   string      `json:"nogood,omitempty"`
	Info     string      `json:"info,omitempty"`
	Nogoods  []int64     `json:"nogoods,omitempty"`
	Solution string      `json:"solution,omitempty"`
}

// ReadJSON decodes a search log from r and builds its execution.
//
// ReadJSON returns an error if the JSON is malformed, a status is unknown,
// or a node has a negative alternative or child count. Stream anomalies such
// as duplicate ids or missing parents are logged to logger and skipped. A
// nil logger uses log.Default(). ReadJSON does not close r.
func ReadJSON(ctx context.Context, r io.Reader, logger *log.Logger) (*execution.Execution, error) {
	return ReadJSONWithOptions(ctx, r, builder.Options{}, logger)
}

// ReadJSONWithOptions is ReadJSON with explicit builder settings.
func ReadJSONWithOptions(ctx context.Context, r io.Reader, opts builder.Options, logger *log.Logger) (*execution.Execution, error) {
	var data searchLog
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	msgs := make([]builder.Message, 0, len(data.Nodes))
	for _, n := range data.Nodes {
		if n.Alt < 0 || n.Kids < 0 {
			return nil, fmt.Errorf("node %d: negative alt or kids", n.ID)
		}
		pid := builder.NoParent
		if n.PID != nil {
			pid = *n.PID
		}
		msgs = append(msgs, builder.Message{
			Type:      builder.MsgNode,
			ID:        n.ID,
			PID:       pid,
			Alt:       n.Alt,
			Kids:      n.Kids,
			Status:    n.Status,
			ThreadID:  n.Thread,
			RestartID: n.Restart,
			Label:     n.Label,
			Nogood:    n.Nogood,
			Info:      n.Info,
			NogoodIDs: n.Nogoods,
			Solution:  n.Solution,
		})
	}

	ex := execution.New(data.Title, data.Restarts)
	for id, clause := range data.NogoodClauses {
		ex.Data.SetNogood(id, clause)
	}
	if err := builder.New(ex, opts, logger).Build(ctx, msgs); err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	return ex, nil
}

// ImportJSON reads the search log at path. The file name, without its
// extension, becomes the execution title when the log has none.
func ImportJSON(ctx context.Context, path string, logger *log.Logger) (*execution.Execution, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	ex, err := ReadJSON(ctx, f, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if ex.Title == "" {
		ex.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return ex, nil
}
