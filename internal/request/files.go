package request

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/corvidlabs/tbot/apierr"
)

// InputFile is the structured {filename, content} form a caller may pass for a file-bearing
// parameter when they want to control the filename explicitly.
type InputFile struct {
	Filename string
	Content  any // a local file path, or raw bytes
}

// StagedFile is one resolved multipart part: a name, bytes, and a guessed MIME type.
type StagedFile struct {
	Filename string
	Content  []byte
	MIME     string
}

// StageFiles resolves every file-bearing and media-bearing parameter in params, mutating a copy
// of params to carry attach:// references in their place, per spec §4.2. The returned map is
// keyed by multipart part name.
func StageFiles(
	params map[string]any, fileParams []string, mediaParams map[string][]string,
) (map[string]any, map[string]StagedFile, error) {
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}

	files := make(map[string]StagedFile)

	if err := stageFileParams(out, fileParams, files); err != nil {
		return nil, nil, &apierr.FileProcessingError{Cause: err}
	}

	if err := stageMediaParams(out, mediaParams, files); err != nil {
		return nil, nil, &apierr.FileProcessingError{Cause: err}
	}

	return out, files, nil
}

func stageFileParams(params map[string]any, fileParams []string, files map[string]StagedFile) error {
	for _, key := range fileParams {
		val, present := params[key]
		if !present {
			continue
		}

		staged, passthrough, isPassthrough, err := resolve(val)
		if err != nil {
			return err
		}

		if isPassthrough {
			params[key] = passthrough

			continue
		}

		params[key] = "attach://" + key
		files[key] = staged
	}

	return nil
}

func stageMediaParams(params map[string]any, mediaParams map[string][]string, files map[string]StagedFile) error {
	for key, subFields := range mediaParams {
		val, present := params[key]
		if !present {
			continue
		}

		original, isSingle, err := asMediaItems(val)
		if err != nil {
			return err
		}

		// Work on copies of the media items so the caller's own item maps are left untouched.
		items := make([]map[string]any, len(original))
		for i, src := range original {
			items[i] = make(map[string]any, len(src))
			for k, v := range src {
				items[i][k] = v
			}
		}

		for _, item := range items {
			for _, field := range subFields {
				fieldVal, hasField := item[field]
				if !hasField {
					continue
				}

				staged, passthrough, isPassthrough, err := resolve(fieldVal)
				if err != nil {
					return err
				}

				if isPassthrough {
					item[field] = passthrough

					continue
				}

				fileID := "file_" + strconv.Itoa(len(files))
				files[fileID] = staged
				item[field] = "attach://" + fileID
			}
		}

		encoded, err := json.Marshal(itemsOrSingle(items, isSingle))
		if err != nil {
			return err
		}

		params[key] = string(encoded)
	}

	return nil
}

func asMediaItems(val any) ([]map[string]any, bool, error) {
	switch v := val.(type) {
	case map[string]any:
		return []map[string]any{v}, true, nil
	case []map[string]any:
		return v, false, nil
	case []any:
		items := make([]map[string]any, 0, len(v))

		for _, raw := range v {
			m, ok := raw.(map[string]any)
			if !ok {
				return nil, false, &apierr.InvalidParamsError{Msg: "media list item was not an object"}
			}

			items = append(items, m)
		}

		return items, false, nil
	default:
		return nil, false, &apierr.InvalidParamsError{Msg: "media parameter was neither an object nor a list"}
	}
}

func itemsOrSingle(items []map[string]any, isSingle bool) any {
	if isSingle {
		return items[0]
	}

	return items
}

// resolve turns one file-bearing value into a StagedFile, or reports it should be passed through
// untouched (a Telegram file_id or a URL).
func resolve(val any) (staged StagedFile, passthrough string, isPassthrough bool, err error) {
	switch v := val.(type) {
	case InputFile:
		switch content := v.Content.(type) {
		case []byte:
			return StagedFile{Filename: v.Filename, Content: content, MIME: guessMIME(v.Filename)}, "", false, nil
		case string:
			if !isLocalFile(content) {
				return StagedFile{}, "", false, &apierr.InvalidParamsError{Msg: "InputFile.Content names no local file"}
			}

			data, err := os.ReadFile(content)
			if err != nil {
				return StagedFile{}, "", false, err
			}

			return StagedFile{Filename: v.Filename, Content: data, MIME: guessMIME(v.Filename)}, "", false, nil
		default:
			return StagedFile{}, "", false, &apierr.InvalidParamsError{Msg: "InputFile.Content must be []byte or a local path"}
		}

	case string:
		if isLocalFile(v) {
			data, err := os.ReadFile(v)
			if err != nil {
				return StagedFile{}, "", false, err
			}

			return StagedFile{Filename: filepath.Base(v), Content: data, MIME: guessMIME(filepath.Base(v))}, "", false, nil
		}

		return StagedFile{}, v, true, nil

	case []byte:
		filename := uuid.NewString()

		return StagedFile{Filename: filename, Content: v, MIME: guessMIME(filename)}, "", false, nil

	default:
		return StagedFile{}, "", false, &apierr.InvalidParamsError{Msg: "unsupported file parameter type"}
	}
}

func isLocalFile(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}

