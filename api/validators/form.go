package validators

import (
	"net/http"

	pkgerrors "github.com/caec/caec-backend/pkg/errors"
	"github.com/gorilla/schema"
)

var formDecoder = newFormDecoder()

func newFormDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.SetAliasTag("form")
	d.IgnoreUnknownKeys(true)
	return d
}

// DecodeForm decodes an urlencoded or multipart form body into dest using
// its form tags, then validates it.
func DecodeForm(r *http.Request, dest any) error {
	if err := r.ParseForm(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body")
	}
	if err := formDecoder.Decode(dest, r.PostForm); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body").WithDetails(map[string]any{"error": err.Error()})
	}
	return ValidateStruct(dest)
}
