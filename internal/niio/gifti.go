package niio

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// GIfTI is XML with one base64 (optionally deflated) blob per data array.
// No Go reader for it exists, so this is a minimal native one covering the
// metric and label files the extractor consumes.

type giftiFile struct {
	XMLName xml.Name     `xml:"GIFTI"`
	Version string       `xml:"Version,attr"`
	NumDA   string       `xml:"NumberOfDataArrays,attr,omitempty"`
	Arrays  []giftiArray `xml:"DataArray"`
}

type giftiArray struct {
	Intent         string `xml:"Intent,attr"`
	DataType       string `xml:"DataType,attr"`
	IndexingOrder  string `xml:"ArrayIndexingOrder,attr,omitempty"`
	Dimensionality int    `xml:"Dimensionality,attr"`
	Dim0           int    `xml:"Dim0,attr"`
	Dim1           int    `xml:"Dim1,attr,omitempty"`
	Encoding       string `xml:"Encoding,attr"`
	Endian         string `xml:"Endian,attr,omitempty"`
	Data           string `xml:"Data"`
}

// decode expands one data array into float64 values, Dim0-major.
func (da *giftiArray) decode() ([]float64, error) {
	n := da.Dim0
	if da.Dimensionality >= 2 && da.Dim1 > 0 {
		n *= da.Dim1
	}

	if da.Encoding == "ASCII" {
		fields := strings.Fields(da.Data)
		if len(fields) != n {
			return nil, fmt.Errorf("niio: gifti ASCII array has %d values, expected %d", len(fields), n)
		}

		values := make([]float64, n)
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("niio: gifti ASCII value %q: %v", field, err)
			}
			values[i] = v
		}
		return values, nil
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(da.Data))
	if err != nil {
		return nil, fmt.Errorf("niio: gifti base64 decode: %v", err)
	}

	switch da.Encoding {
	case "Base64Binary":
	case "GZipBase64Binary":
		raw, err = inflate(raw)
		if err != nil {
			return nil, fmt.Errorf("niio: gifti inflate: %v", err)
		}
	default:
		return nil, fmt.Errorf("niio: unsupported gifti encoding %q", da.Encoding)
	}

	var order binary.ByteOrder = binary.LittleEndian
	if da.Endian == "BigEndian" {
		order = binary.BigEndian
	}

	values := make([]float64, n)
	switch da.DataType {
	case "NIFTI_TYPE_FLOAT32":
		if len(raw) < 4*n {
			return nil, fmt.Errorf("niio: gifti array has %d bytes, expected %d", len(raw), 4*n)
		}
		for i := 0; i < n; i++ {
			values[i] = float64(math.Float32frombits(order.Uint32(raw[4*i:])))
		}
	case "NIFTI_TYPE_INT32":
		if len(raw) < 4*n {
			return nil, fmt.Errorf("niio: gifti array has %d bytes, expected %d", len(raw), 4*n)
		}
		for i := 0; i < n; i++ {
			values[i] = float64(int32(order.Uint32(raw[4*i:])))
		}
	case "NIFTI_TYPE_UINT8":
		if len(raw) < n {
			return nil, fmt.Errorf("niio: gifti array has %d bytes, expected %d", len(raw), n)
		}
		for i := 0; i < n; i++ {
			values[i] = float64(raw[i])
		}
	default:
		return nil, fmt.Errorf("niio: unsupported gifti data type %q", da.DataType)
	}

	return values, nil
}

// inflate handles both the zlib streams most writers emit and the gzip
// streams the format name promises.
func inflate(raw []byte) ([]byte, error) {
	if r, err := zlib.NewReader(bytes.NewReader(raw)); err == nil {
		defer r.Close()
		return io.ReadAll(r)
	}

	r, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

// isSurfaceGeometry reports data arrays that carry mesh geometry rather
// than per-vertex values.
func isSurfaceGeometry(intent string) bool {
	return intent == "NIFTI_INTENT_POINTSET" || intent == "NIFTI_INTENT_TRIANGLE"
}
