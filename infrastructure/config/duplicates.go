package config

import (
	"bytes"
	"encoding/json"

	"github.com/felixgeelhaar/goap/domain/config"
)

// duplicateKeys walks a JSON document and reports every object key that
// appears more than once within the same object. Paths are dotted from
// the document root, e.g. "actions.rest".
func duplicateKeys(data []byte) config.ValidationErrors {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var errs config.ValidationErrors
	if walkValue(dec, "", &errs) != nil {
		return nil
	}
	return errs
}

func walkValue(dec *json.Decoder, path string, errs *config.ValidationErrors) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	switch tok {
	case json.Delim('{'):
		return walkObject(dec, path, errs)
	case json.Delim('['):
		for dec.More() {
			if err := walkValue(dec, path, errs); err != nil {
				return err
			}
		}
		_, err = dec.Token()
		return err
	}
	return nil
}

func walkObject(dec *json.Decoder, path string, errs *config.ValidationErrors) error {
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		child := key
		if path != "" {
			child = path + "." + key
		}
		if seen[key] {
			*errs = append(*errs, config.ValidationError{Path: child, Message: "duplicate key"})
		}
		seen[key] = true
		if err := walkValue(dec, child, errs); err != nil {
			return err
		}
	}
	_, err := dec.Token()
	return err
}
