/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/mitchellh/mapstructure"

	"github.com/suparena/modelstore/datastore"
	"github.com/suparena/modelstore/storagemodels"
)

// EncodeRecord converts v into a record. Maps are copied as they are; structs
// go through their json tags and come back with canonical values.
func EncodeRecord(v any) (storagemodels.Record, error) {
	switch x := v.(type) {
	case nil:
		return storagemodels.Record{}, nil
	case storagemodels.Record:
		return x.Clone(), nil
	case map[string]any:
		return storagemodels.Record(x).Clone(), nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%T does not encode to an object: %w", v, err)
	}
	return datastore.Canonical(fields)
}

// DecodeRecord decodes rec into out through json tags with weak typing, so
// int64 keys fill int fields and stored timestamps fill time fields.
func DecodeRecord(rec storagemodels.Record, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       timeHook,
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any(rec))
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	dateTimeType = reflect.TypeOf(strfmt.DateTime{})
)

func timeHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	switch to {
	case dateTimeType:
		switch v := data.(type) {
		case string:
			return strfmt.ParseDateTime(v)
		case time.Time:
			return strfmt.DateTime(v), nil
		}
	case timeType:
		switch v := data.(type) {
		case string:
			return time.Parse(time.RFC3339, v)
		case strfmt.DateTime:
			return time.Time(v), nil
		}
	}
	return data, nil
}

func sortedKeys(rec storagemodels.Record) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
