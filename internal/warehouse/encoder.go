package warehouse

import (
	"bytes"
	"fmt"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	domain "github.com/tigerroll/weather-etl/internal/domain/weather"
)

// ParquetContentType is the content type of staged load files.
const ParquetContentType = "application/octet-stream"

// EncodeParquet writes records as a Snappy-compressed Parquet file with one UTF8 column per field.
// An empty slice yields a valid file with no rows.
func EncodeParquet(records []domain.WeatherRecord) (data []byte, err error) {
	buf := new(bytes.Buffer)
	pw, err := writer.NewParquetWriterFromWriter(buf, new(domain.WeatherRecord), 1)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i := range records {
		if err := pw.Write(records[i]); err != nil {
			return nil, fmt.Errorf("failed to write record %d (%s) to parquet: %w", i, records[i].LocationName, err)
		}
	}

	// WriteStop can panic inside the library on corrupt state.
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, fmt.Errorf("parquet writer panicked during WriteStop: %v", r)
		}
	}()
	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return buf.Bytes(), nil
}
