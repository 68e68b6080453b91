package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// JSON writes data as indented JSON to stdout
func JSON(data interface{}) error {
	return JSONTo(os.Stdout, data)
}

func JSONTo(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Output writes data in the requested format to stdout
func Output(format string, data interface{}) error {
	return OutputTo(os.Stdout, format, data)
}

func OutputTo(w io.Writer, format string, data interface{}) error {
	switch format {
	case FormatJSON:
		return JSONTo(w, data)
	case FormatTable, "":
		return TableTo(w, data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
