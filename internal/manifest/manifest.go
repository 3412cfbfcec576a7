package manifest

import (
	"encoding/json"
	"os"
	"strings"
	"sync"
	"time"

	"example.com/bayerfix/internal/common"
)

// Item is one produced artifact with its content hash.
type Item struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	Sha256 string `json:"sha256"`
	Type   string `json:"type"`
}

// Manifest inventories the outputs of a processing run so consumers can
// verify what they received.
type Manifest struct {
	CreatedAt time.Time `json:"createdAt"`
	ShaAlgo   string    `json:"shaAlgo"`
	Items     []Item    `json:"items"`
}

func Build(paths []string) (Manifest, error) {
	m := Manifest{CreatedAt: time.Now().UTC(), ShaAlgo: "sha256"}
	for _, p := range paths {
		item, err := buildItem(p)
		if err != nil {
			return m, err
		}
		m.Items = append(m.Items, item)
	}
	return m, nil
}

// BuildConcurrent hashes the inputs with up to workers goroutines. Item order
// matches the input order regardless of completion order.
func BuildConcurrent(paths []string, workers int) (Manifest, error) {
	if workers <= 1 || len(paths) < 2 {
		return Build(paths)
	}
	if workers > len(paths) {
		workers = len(paths)
	}
	items := make([]Item, len(paths))
	sem := make(chan struct{}, workers)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i, p := range paths {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, p string) {
			defer wg.Done()
			defer func() { <-sem }()
			item, err := buildItem(p)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			items[i] = item
		}(i, p)
	}
	wg.Wait()
	if firstErr != nil {
		return Manifest{}, firstErr
	}
	return Manifest{CreatedAt: time.Now().UTC(), ShaAlgo: "sha256", Items: items}, nil
}

func buildItem(path string) (Item, error) {
	hex, sz, err := common.Sha256OfFile(path)
	if err != nil {
		return Item{}, err
	}
	return Item{Path: path, Size: sz, Sha256: hex, Type: itemType(path)}, nil
}

func itemType(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".bin"):
		return "frame"
	case strings.HasSuffix(lower, ".png"):
		return "image"
	case strings.HasSuffix(lower, ".txt"):
		return "metadata"
	case strings.HasSuffix(lower, ".jsonl"):
		return "log"
	case strings.HasSuffix(lower, ".json"):
		return "json"
	case strings.HasSuffix(lower, ".pdf"):
		return "pdf"
	default:
		return "other"
	}
}

func Save(m Manifest, out string) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0644)
}

func Load(path string) (Manifest, error) {
	var m Manifest
	b, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	err = json.Unmarshal(b, &m)
	return m, err
}
