// Package words loads the secret-word pool for the game.
package words

import (
	"bufio"
	"log"
	"os"
	"strings"
)

// fallback keeps the game playable when no usable word file exists.
var fallback = []string{
	"PIZZA", "AIRPLANE", "VOLCANO", "BICYCLE",
	"CHOCOLATE", "PYRAMID", "ROBOT", "CASTLE",
}

// Load reads the word list from path: one word per line, blank lines
// and #-comments skipped, multi-token entries dropped, everything
// uppercased and deduplicated in file order. An absent or empty file
// yields the built-in fallback set.
func Load(path string) []string {
	var out []string
	seen := make(map[string]struct{})

	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[WORDS] cannot read %s: %v", path, err)
		}
	} else {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			w := strings.TrimSpace(scanner.Text())
			if w == "" || strings.HasPrefix(w, "#") {
				continue
			}
			if strings.Contains(w, " ") {
				continue
			}
			w = strings.ToUpper(w)
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
		if err := scanner.Err(); err != nil {
			log.Printf("[WORDS] error reading %s: %v", path, err)
		}
	}

	if len(out) == 0 {
		log.Printf("[WORDS] no usable words in %s, using built-in list", path)
		return append([]string(nil), fallback...)
	}
	log.Printf("[WORDS] loaded %d words from %s", len(out), path)
	return out
}
