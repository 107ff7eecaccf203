/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package redis

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/suparena/modelstore/storagemodels"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	// Deterministic encoding keeps identical records byte-identical in Redis.
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("redis: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		IntDec:         cbor.IntDecConvertSignedOrFail,
	}.DecMode()
	if err != nil {
		panic("redis: CBOR decoder initialization failed: " + err.Error())
	}
}

func encodeRecord(rec storagemodels.Record) ([]byte, error) {
	return encMode.Marshal(map[string]any(rec))
}

func decodeRecord(data []byte) (storagemodels.Record, error) {
	var m map[string]any
	if err := decMode.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return storagemodels.Record(m), nil
}

func encodePartition(p storagemodels.PartitionConfig) ([]byte, error) {
	return encMode.Marshal(p)
}

func decodePartition(data []byte) (storagemodels.PartitionConfig, error) {
	var p storagemodels.PartitionConfig
	err := decMode.Unmarshal(data, &p)
	return p, err
}
