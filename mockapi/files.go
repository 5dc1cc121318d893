// Package mockapi provides a very basic mock file store for examples and demos.
// It's intentionally kept public to enable running and experimenting with examples in the Go Playground.
// File contents are generated deterministically, only the latency is random.
package mockapi

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"math/rand"
	"sort"
	"strings"
	"time"
)

// ErrNotFound is returned by OpenFile for unknown file names.
var ErrNotFound = errors.New("file not found")

// file name -> content
var files map[string]string

func init() {
	const filesCount = 10

	var levels = []string{"DEBUG", "INFO", "INFO", "INFO", "WARN", "ERROR"}
	var users = []string{"alice", "bob", "carol", "dave", "erin", "frank"}
	var actions = []string{"login", "logout", "upload", "download", "delete", "search"}

	files = make(map[string]string, filesCount)

	for i := 1; i <= filesCount; i++ {
		name := fmt.Sprintf("app-%02d.log", i)
		lines := hash(i, "lines")%40 + 20 // 20-60

		var sb strings.Builder
		for j := 0; j < lines; j++ {
			fmt.Fprintf(&sb, "level=%s user=%s action=%s\n",
				levels[hash(i, j, "level")%len(levels)],
				users[hash(i, j, "user")%len(users)],
				actions[hash(i, j, "action")%len(actions)],
			)
		}

		files[name] = sb.String()
	}
}

// ListFiles returns the names of all files, sorted.
func ListFiles(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	randomSleep(ctx, 100*time.Millisecond)

	res := make([]string, 0, len(files))
	for name := range files {
		res = append(res, name)
	}
	sort.Strings(res)
	return res, nil
}

// OpenFile simulates opening a remote file. The returned reader is slow to read from.
func OpenFile(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	randomSleep(ctx, 300*time.Millisecond)

	content, ok := files[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}

	return io.NopCloser(&slowReader{ctx: ctx, r: strings.NewReader(content)}), nil
}

// slowReader sleeps a little before every read, like a network stream would
type slowReader struct {
	ctx context.Context
	r   io.Reader
}

func (s *slowReader) Read(p []byte) (int, error) {
	if err := s.ctx.Err(); err != nil {
		return 0, err
	}
	randomSleep(s.ctx, 10*time.Millisecond)

	if len(p) > 256 {
		p = p[:256]
	}
	return s.r.Read(p)
}

func hash(input ...any) int {
	hasher := fnv.New32()
	fmt.Fprintln(hasher, input...)
	return int(hasher.Sum32())
}

func randomSleep(ctx context.Context, max time.Duration) {
	dur := time.Duration(rand.Intn(int(max)))
	t := time.NewTimer(dur)
	defer t.Stop()

	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
