package validate_test

import (
	"errors"
	"testing"

	"github.com/helios-protocol/microblock/foundation/validate"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type decodeRequest struct {
	RawBlock string `json:"rawBlock" validate:"required,hexadecimal"`
	ChainID  uint64 `json:"chainId" validate:"required"`
	Ignored  string `json:"-"`
}

func Test_Check(t *testing.T) {
	t.Log("Given the need to validate request models.")
	{
		t.Logf("\tTest 0:\tWhen the model is valid.")
		{
			if err := validate.Check(decodeRequest{RawBlock: "0xc0", ChainID: 1}); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould accept the model: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould accept the model.", success)
		}

		t.Logf("\tTest 1:\tWhen required fields are missing.")
		{
			err := validate.Check(decodeRequest{})
			if !validate.IsFieldErrors(err) {
				t.Fatalf("\t%s\tTest 1:\tShould return field errors: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould return field errors.", success)

			fields := validate.GetFieldErrors(err).Fields()
			if _, exists := fields["rawBlock"]; !exists {
				t.Fatalf("\t%s\tTest 1:\tShould name fields by their json tag: %v", failed, fields)
			}
			if _, exists := fields["chainId"]; !exists {
				t.Fatalf("\t%s\tTest 1:\tShould name fields by their json tag: %v", failed, fields)
			}
			t.Logf("\t%s\tTest 1:\tShould name fields by their json tag.", success)
		}

		t.Logf("\tTest 2:\tWhen the error is not from validation.")
		{
			if validate.IsFieldErrors(errors.New("boom")) || validate.GetFieldErrors(errors.New("boom")) != nil {
				t.Fatalf("\t%s\tTest 2:\tShould not report field errors.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould not report field errors.", success)
		}
	}
}
