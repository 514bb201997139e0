package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type joinRequest struct {
	GameID   string `json:"game_id" validate:"required,record_id"`
	Username string `json:"username" validate:"required"`
	Slots    int    `json:"slots" validate:"gte=1"`
}

func TestValidateStructAccepts(t *testing.T) {
	req := joinRequest{
		GameID:   "64a1b2c3d4e5f60718293a4b",
		Username: "kestrel",
		Slots:    2,
	}
	require.NoError(t, ValidateStruct(req))
}

func TestValidateStructCollectsAllFailures(t *testing.T) {
	err := ValidateStruct(joinRequest{GameID: "not-hex"})
	require.Error(t, err)

	var failures ValidationErrors
	require.ErrorAs(t, err, &failures)
	require.Len(t, failures, 3)

	byField := map[string]string{}
	for _, f := range failures {
		byField[f.Field] = f.Tag
	}
	require.Equal(t, "record_id", byField["game_id"])
	require.Equal(t, "required", byField["username"])
	require.Equal(t, "gte", byField["slots"])
}

func TestRecordIDTag(t *testing.T) {
	type ref struct {
		ID string `json:"id" validate:"record_id"`
	}

	require.NoError(t, ValidateStruct(ref{ID: "000000000000000000000000"}))

	for _, bad := range []string{
		"",
		"64a1b2c3",
		"64A1B2C3D4E5F60718293A4B",
		"64a1b2c3d4e5f60718293a4g",
	} {
		require.Error(t, ValidateStruct(ref{ID: bad}), "id %q", bad)
	}
}

func TestFieldNamePrefersMapstructureTag(t *testing.T) {
	type section struct {
		MaxEntries int `mapstructure:"max_entries" validate:"gte=0"`
	}

	err := ValidateStruct(section{MaxEntries: -1})
	require.Error(t, err)

	var failures ValidationErrors
	require.ErrorAs(t, err, &failures)
	require.Len(t, failures, 1)
	require.Equal(t, "max_entries", failures[0].Field)
}

func TestRegisterValidation(t *testing.T) {
	require.NoError(t, RegisterValidation("driver", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "sqlite", "postgres", "mysql":
			return true
		}
		return false
	}))

	type cfg struct {
		Driver string `validate:"driver"`
	}
	require.NoError(t, ValidateStruct(cfg{Driver: "sqlite"}))
	require.Error(t, ValidateStruct(cfg{Driver: "oracle"}))
}
