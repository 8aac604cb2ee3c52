package forms

import (
	"strings"

	pkgerrors "github.com/angelmondragon/content-console/pkg/errors"
)

// validate checks required text, option membership, asset cardinality and pairs.
func validate[T any](def Definition[T], draft Draft) error {
	problems := map[string]string{}

	for _, f := range def.Fields {
		switch {
		case f.isText():
			value := strings.TrimSpace(draft.Text[f.Name])
			if f.Required && value == "" {
				problems[f.Name] = "is required"
				continue
			}
			if value != "" && len(f.Options) > 0 && !contains(f.Options, value) {
				problems[f.Name] = "must be one of " + strings.Join(f.Options, ", ")
			}
		case f.Kind == FieldAsset:
			if len(draft.Assets) > 1 {
				problems[f.Name] = "accepts a single image"
			} else if f.Required && len(draft.Assets) == 0 {
				problems[f.Name] = "an image is required"
			}
		case f.Kind == FieldAssetList:
			if f.Required && len(draft.Assets) == 0 {
				problems[f.Name] = "at least one image is required"
			}
		case f.Kind == FieldPairList:
			if f.Required && len(draft.Pairs) == 0 {
				problems[f.Name] = "at least one entry is required"
				continue
			}
			for _, p := range draft.Pairs {
				platform := strings.TrimSpace(p.Platform)
				if platform == "" || strings.TrimSpace(p.Link) == "" {
					problems[f.Name] = "every entry needs a platform and a link"
					break
				}
				if len(f.Options) > 0 && !contains(f.Options, platform) {
					problems[f.Name] = "platform must be one of " + strings.Join(f.Options, ", ")
					break
				}
			}
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "form has invalid fields").WithDetails(problems)
}

func contains(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}
