/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package catalog resolves MXQL category names to their field metadata.
// The analyzer treats the catalog as an optional collaborator: when a
// category cannot be resolved, validation degrades to an Info note
// instead of failing.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound is returned by Lookup when the category does not exist.
// Callers treat it the same as an unavailable catalog.
var ErrNotFound = errors.New("category not found")

// Field describes one field of a category.
type Field struct {
	FieldName   string `json:"fieldName"`
	Unit        string `json:"unit,omitempty"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// Tag describes one tag key of a category. Tags are addressable in
// queries the same way fields are.
type Tag struct {
	TagName     string `json:"tagName"`
	Description string `json:"description,omitempty"`
}

// CategoryMeta is the metadata of one category, as stored in .meta files.
type CategoryMeta struct {
	CategoryName string   `json:"categoryName"`
	Title        string   `json:"title,omitempty"`
	Interval     string   `json:"interval,omitempty"`
	PK           []string `json:"pk,omitempty"`
	Platforms    []string `json:"platforms,omitempty"`
	Tags         []Tag    `json:"tags,omitempty"`
	Fields       []Field  `json:"fields,omitempty"`
}

// HasField reports whether name is a known field, tag or primary key of
// the category.
func (m *CategoryMeta) HasField(name string) bool {
	for _, f := range m.Fields {
		if f.FieldName == name {
			return true
		}
	}
	for _, t := range m.Tags {
		if t.TagName == name {
			return true
		}
	}
	for _, pk := range m.PK {
		if pk == name {
			return true
		}
	}
	return false
}

// Finder resolves a category name to its metadata. Implementations are
// expected to be fast or cached: the validator calls Lookup at most once
// per literal category name per validation.
type Finder interface {
	Lookup(category string) (*CategoryMeta, error)
}

// Static is an in-memory Finder, mainly for tests and embedding.
type Static map[string]*CategoryMeta

// Lookup implements Finder.
func (s Static) Lookup(category string) (*CategoryMeta, error) {
	meta, ok := s[category]
	if !ok {
		return nil, ErrNotFound
	}
	return meta, nil
}

// DirFinder loads category metadata from a directory of .meta files
// (one JSON document per category, the format the metadata exporter
// writes). Files suffixed _ko or _ja are translations and only fill
// gaps the base file left.
type DirFinder struct {
	categories map[string]*CategoryMeta
}

// OpenDir reads every .meta file under dir and builds the in-memory
// index. Unreadable or malformed files are skipped: a partial catalog is
// more useful than none.
func OpenDir(dir string) (*DirFinder, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("open catalog dir: %w", err)
	}

	f := &DirFinder{categories: map[string]*CategoryMeta{}}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		var meta CategoryMeta
		if err := json.Unmarshal(data, &meta); err != nil || meta.CategoryName == "" {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), ".meta")
		translated := strings.HasSuffix(stem, "_ko") || strings.HasSuffix(stem, "_ja")
		if _, exists := f.categories[meta.CategoryName]; exists && translated {
			continue
		}
		f.categories[meta.CategoryName] = &meta
	}
	return f, nil
}

// Lookup implements Finder.
func (f *DirFinder) Lookup(category string) (*CategoryMeta, error) {
	meta, ok := f.categories[category]
	if !ok {
		return nil, ErrNotFound
	}
	return meta, nil
}

// Categories returns every known category name, sorted.
func (f *DirFinder) Categories() []string {
	names := make([]string, 0, len(f.categories))
	for name := range f.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SearchResult is one scored hit from Search.
type SearchResult struct {
	CategoryName string
	Title        string
	Relevance    float64
}

// Search scores categories against a keyword query: exact keyword hits
// score highest, then name substrings, then title words. Results come
// back sorted by relevance, capped at limit.
func (f *DirFinder) Search(query string, limit int) []SearchResult {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	scores := map[string]float64{}
	for name, meta := range f.categories {
		lower := strings.ToLower(name)
		switch {
		case lower == query:
			scores[name] += 3
		case strings.Contains(lower, query):
			scores[name] += 2
		}
		for _, part := range strings.Split(lower, "_") {
			if part == query {
				scores[name] += 2
			}
		}
		for _, word := range strings.Fields(strings.ToLower(meta.Title)) {
			if word == query {
				scores[name] += 1
			}
		}
		for _, platform := range meta.Platforms {
			if strings.ToLower(platform) == query {
				scores[name] += 1
			}
		}
	}

	results := make([]SearchResult, 0, len(scores))
	for name, score := range scores {
		results = append(results, SearchResult{
			CategoryName: name,
			Title:        f.categories[name].Title,
			Relevance:    score,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Relevance != results[j].Relevance {
			return results[i].Relevance > results[j].Relevance
		}
		return results[i].CategoryName < results[j].CategoryName
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
