package outbox

import (
	"fmt"
	"regexp"

	"github.com/iudanet/clipsync/internal/models"
)

// Filter настройки фильтрации для одного типа элементов.
type Filter struct {
	IncludePatterns []string `yaml:"include_patterns" json:"include_patterns"`
	ExcludePatterns []string `yaml:"exclude_patterns" json:"exclude_patterns"`
	MaxSize         int      `yaml:"max_size" json:"max_size"` // 0 - без ограничения
	Enabled         bool     `yaml:"enabled" json:"enabled"`
}

type compiledFilter struct {
	include []*regexp.Regexp
	exclude []*regexp.Regexp
	maxSize int
	enabled bool
}

// FilterSet is a compiled set of per-type filters. Types without an entry pass.
type FilterSet struct {
	byType map[models.ItemType]compiledFilter
}

// CompileFilters validates item types and compiles every pattern.
func CompileFilters(filters map[models.ItemType]Filter) (*FilterSet, error) {
	fs := &FilterSet{byType: make(map[models.ItemType]compiledFilter, len(filters))}
	for itemType, f := range filters {
		if _, err := models.ParseItemType(string(itemType)); err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
		cf := compiledFilter{enabled: f.Enabled, maxSize: f.MaxSize}
		for _, p := range f.IncludePatterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("filter %s: invalid include pattern %q: %w", itemType, p, err)
			}
			cf.include = append(cf.include, re)
		}
		for _, p := range f.ExcludePatterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("filter %s: invalid exclude pattern %q: %w", itemType, p, err)
			}
			cf.exclude = append(cf.exclude, re)
		}
		fs.byType[itemType] = cf
	}
	return fs, nil
}

// Allow reports whether an item passes the filter of its type.
func (fs *FilterSet) Allow(item *models.SyncItem) bool {
	if fs == nil {
		return true
	}
	f, ok := fs.byType[item.Type]
	if !ok {
		return true
	}
	if !f.enabled {
		return false
	}

	if f.maxSize > 0 {
		raw, err := models.EncodePayload(item.Payload)
		if err != nil || len(raw) > f.maxSize {
			return false
		}
	}

	// delete без payload проверяется только по enabled и размеру
	if item.Payload == nil {
		return true
	}

	text := models.SearchText(item.Payload)
	for _, re := range f.exclude {
		if re.MatchString(text) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, re := range f.include {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
