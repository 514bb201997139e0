package fieldstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStringCodecRejectsNonStrings(t *testing.T) {
	_, err := StringCodec{}.ToDistributed(42)
	require.Error(t, err)

	v, err := StringCodec{}.FromPersistent([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, "hello", v)
}

func TestInt64CodecDistributedForm(t *testing.T) {
	s, err := Int64Codec{}.ToDistributed(42)
	require.NoError(t, err)
	require.Equal(t, "42", s)

	v, err := Int64Codec{}.FromDistributed("42")
	require.NoError(t, err)
	require.Equal(t, int64(42), v)

	_, err = Int64Codec{}.FromDistributed("not a number")
	require.Error(t, err)
}

func TestInt64CodecCoercesDriverTypes(t *testing.T) {
	// SQLite hands integers back as int64, MySQL text protocol as []byte.
	v, err := Int64Codec{}.FromPersistent([]byte("7"))
	require.NoError(t, err)
	require.Equal(t, int64(7), v)

	v, err = Int64Codec{}.FromPersistent(int64(7))
	require.NoError(t, err)
	require.Equal(t, int64(7), v)

	v, err = Int64Codec{}.FromPersistent(nil)
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestBoolCodecDistributedForm(t *testing.T) {
	s, err := BoolCodec{}.ToDistributed(true)
	require.NoError(t, err)
	require.Equal(t, "1", s)

	v, err := BoolCodec{}.FromDistributed("0")
	require.NoError(t, err)
	require.Equal(t, false, v)

	_, err = BoolCodec{}.FromDistributed("maybe")
	require.Error(t, err)
}

func TestTimeCodecKeepsNanosecondPrecision(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC)

	s, err := TimeCodec{}.ToDistributed(at)
	require.NoError(t, err)

	v, err := TimeCodec{}.FromDistributed(s)
	require.NoError(t, err)
	require.True(t, at.Equal(v.(time.Time)))
}

func TestJSONCodecRoundTrip(t *testing.T) {
	doc := map[string]any{"mode": "conquest", "max_players": float64(8)}

	s, err := JSONCodec{}.ToDistributed(doc)
	require.NoError(t, err)

	v, err := JSONCodec{}.FromDistributed(s)
	require.NoError(t, err)
	require.Equal(t, doc, v)

	p, err := JSONCodec{}.ToPersistent(doc)
	require.NoError(t, err)
	require.IsType(t, "", p)

	v, err = JSONCodec{}.FromPersistent(p)
	require.NoError(t, err)
	require.Equal(t, doc, v)
}
