package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeBookLinesDropsBadRecords(t *testing.T) {
	raw := `[
		{"book":{"id":"b1","title":"A","buyPrice":100},"quantity":2,"purchaseType":"buy"},
		{"book":{"id":""},"quantity":1,"purchaseType":"buy"},
		{"book":{"id":"b2"},"quantity":0,"purchaseType":"buy"},
		{"book":{"id":"b3"},"quantity":1,"purchaseType":"lease"},
		{"book":{"id":"b4","rentPrice7Days":80},"quantity":1,"purchaseType":"rent","rentDuration":21},
		"garbage"
	]`

	lines, dropped, err := DecodeBookLines(raw)
	require.NoError(t, err)
	require.Equal(t, 4, dropped)
	require.Len(t, lines, 2)
	require.Equal(t, "b1", lines[0].Book.ID)
	require.Equal(t, int64(100), lines[0].Book.BuyPrice)
	require.Equal(t, RentDuration(21), lines[1].RentDuration)
}

func TestDecodeMalformedSlot(t *testing.T) {
	_, _, err := DecodeBookLines("{not json")
	require.Error(t, err)

	_, _, err = DecodeProductLines(`{"product":{}}`)
	require.Error(t, err)

	_, _, err = DecodePendingPosts("")
	require.Error(t, err)
}

func TestDecodePendingPostsForcesPending(t *testing.T) {
	raw := `[
		{"id":"p1","category":"help","content":"need notes","authorName":"Ali","status":"approved"},
		{"id":"p2","category":"memes","content":"x","authorName":"B"}
	]`

	posts, dropped, err := DecodePendingPosts(raw)
	require.NoError(t, err)
	require.Equal(t, 1, dropped)
	require.Len(t, posts, 1)
	require.Equal(t, StatusPending, posts[0].Status)
}

func TestValidateBookSelection(t *testing.T) {
	require.NoError(t, ValidateBookSelection("b1", ModeBuy, 0))
	require.NoError(t, ValidateBookSelection("b1", ModeRent, Rent30Days))

	err := ValidateBookSelection("b1", ModeRent, 0)
	require.Equal(t, CodeInvalidArgument, Code(err))
	require.Equal(t, ErrMsgRentNeedsDuration, err.Error())

	err = ValidateBookSelection("b1", ModeBuy, Rent7Days)
	require.Equal(t, ErrMsgBuyTakesNoDuration, err.Error())

	err = ValidateBookSelection("", ModeBuy, 0)
	require.Equal(t, ErrMsgBookIDRequired, err.Error())

	err = ValidateBookSelection("b1", "lease", 0)
	require.Equal(t, ErrMsgUnknownMode, err.Error())
}

func TestValidatePost(t *testing.T) {
	require.NoError(t, ValidatePost(CategoryBooks, "  selling physics notes  ", "Sara"))

	require.Error(t, ValidatePost("memes", "x", "Sara"))
	require.EqualError(t, ValidatePost(CategoryHelp, "   ", "Sara"), ErrMsgPostContentRequired)
	require.EqualError(t, ValidatePost(CategoryHelp, strings.Repeat("a", MaxPostContent+1), "Sara"), ErrMsgPostContentTooLong)
	require.EqualError(t, ValidatePost(CategoryHelp, "x", " "), ErrMsgPostAuthorRequired)
	require.NoError(t, ValidatePost(CategoryHelp, strings.Repeat("ü", MaxPostContent), "Sara"))
}

func TestCodeOfForeignError(t *testing.T) {
	require.Equal(t, ErrCode(""), Code(nil))
	require.Equal(t, ErrCode(""), Code(errors.New("boom")))
}
