package core

import (
	"sort"
	"time"

	"github.com/JonMunkholm/booksheet/internal/schema"
)

// SortSpec selects a sort field and direction.
type SortSpec struct {
	Field schema.Field
	Desc  bool
}

// SortRecords returns a sorted copy of records; the input is not modified.
//
// Date fields compare as day-first dates and integer fields (isbn, year,
// copies) numerically. Values that do not parse go to the tail in their
// original order, whichever direction is requested. Other fields compare as
// plain strings. The sort is stable.
func SortRecords(field schema.Field, records []Record, reverse bool) []Record {
	return sortRecordsAt(field, records, reverse, time.Now())
}

// sortRecordsAt resolves two-digit years in date fields relative to now.
func sortRecordsAt(field schema.Field, records []Record, reverse bool, now time.Time) []Record {
	parseDate := func(s string) (time.Time, bool) { return ParseDateAt(s, now) }

	switch fieldType(field) {
	case schema.FieldDate:
		return sortByKey(field, records, reverse, parseDate, func(a, b time.Time) bool { return a.Before(b) })
	case schema.FieldInteger:
		return sortByKey(field, records, reverse, ParseInt, func(a, b int64) bool { return a < b })
	}

	out := append([]Record(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Get(field), out[j].Get(field)
		if reverse {
			return a > b
		}
		return a < b
	})
	return out
}

type keyed[K any] struct {
	key K
	rec Record
}

func sortByKey[K any](field schema.Field, records []Record, reverse bool, parse func(string) (K, bool), less func(a, b K) bool) []Record {
	valid := make([]keyed[K], 0, len(records))
	var invalid []Record

	for _, rec := range records {
		k, ok := parse(rec.Get(field))
		if !ok {
			invalid = append(invalid, rec)
			continue
		}
		valid = append(valid, keyed[K]{key: k, rec: rec})
	}

	sort.SliceStable(valid, func(i, j int) bool {
		if reverse {
			return less(valid[j].key, valid[i].key)
		}
		return less(valid[i].key, valid[j].key)
	})

	out := make([]Record, 0, len(records))
	for _, v := range valid {
		out = append(out, v.rec)
	}
	return append(out, invalid...)
}

// fieldType looks the field up in whichever table defines it.
func fieldType(f schema.Field) schema.FieldType {
	for _, t := range schema.All() {
		if spec, ok := t.Spec(f); ok {
			return spec.Type
		}
	}
	return schema.FieldText
}
