package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolveArchiveMarch2022(t *testing.T) {
	t.Parallel()

	month, err := ParseMonthArg(2022, "03")
	require.NoError(t, err)

	archive := ResolveArchive(DefaultBaseURL, VariantStandard, month)
	require.Equal(t, "lichess_db_standard_rated_2022-03.pgn.zst", archive.FileName)
	require.Equal(t, "https://database.lichess.org/standard/lichess_db_standard_rated_2022-03.pgn.zst", archive.URL)
}

func TestDerivationIsDeterministic(t *testing.T) {
	t.Parallel()

	month := Month{Year: 2021, Month: time.November}
	require.Equal(t, FileName(VariantStandard, month), FileName(VariantStandard, month))
	require.Equal(t, URL(DefaultBaseURL, VariantStandard, month), URL(DefaultBaseURL, VariantStandard, month))
	require.Equal(t, URL(DefaultBaseURL+"/", VariantStandard, month), URL(DefaultBaseURL, VariantStandard, month))
}

func TestFileNamesNeverCollide(t *testing.T) {
	t.Parallel()

	seen := map[string]Month{}
	for year := 2013; year <= 2030; year++ {
		for m := 1; m <= 12; m++ {
			month, err := NewMonth(year, m)
			require.NoError(t, err)

			name := FileName(VariantStandard, month)
			prev, dup := seen[name]
			require.False(t, dup, "%s and %s share %s", prev, month, name)
			seen[name] = month
		}
	}
}

func TestParseMonthArg(t *testing.T) {
	t.Parallel()

	cases := []struct {
		arg     string
		want    time.Month
		wantErr bool
	}{
		{arg: "01", want: time.January},
		{arg: "3", want: time.March},
		{arg: " 12 ", want: time.December},
		{arg: "00", wantErr: true},
		{arg: "13", wantErr: true},
		{arg: "003", wantErr: true},
		{arg: "ab", wantErr: true},
		{arg: "", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("arg=%q", tc.arg), func(t *testing.T) {
			got, err := ParseMonthArg(2022, tc.arg)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, Month{Year: 2022, Month: tc.want}, got)
		})
	}
}

func TestParseYearMonth(t *testing.T) {
	t.Parallel()

	got, err := ParseYearMonth("2023-02")
	require.NoError(t, err)
	require.Equal(t, Month{Year: 2023, Month: time.February}, got)

	_, err = ParseYearMonth("2023/02")
	require.Error(t, err)
}

func TestMonthRangeCrossesYear(t *testing.T) {
	t.Parallel()

	got, err := MonthRange(Month{Year: 2022, Month: time.November}, Month{Year: 2023, Month: time.February})
	require.NoError(t, err)
	require.Equal(t, []Month{
		{Year: 2022, Month: time.November},
		{Year: 2022, Month: time.December},
		{Year: 2023, Month: time.January},
		{Year: 2023, Month: time.February},
	}, got)

	single, err := MonthRange(Month{Year: 2022, Month: time.May}, Month{Year: 2022, Month: time.May})
	require.NoError(t, err)
	require.Len(t, single, 1)

	_, err = MonthRange(Month{Year: 2022, Month: time.May}, Month{Year: 2022, Month: time.April})
	require.Error(t, err)
}

func TestParseVariant(t *testing.T) {
	t.Parallel()

	v, err := ParseVariant("Chess960")
	require.NoError(t, err)
	require.Equal(t, VariantChess960, v)

	v, err = ParseVariant("koth")
	require.NoError(t, err)
	require.Equal(t, VariantKingOfTheHill, v)

	_, err = ParseVariant("bughouse")
	require.Error(t, err)
}

func TestStageErrorsUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")

	var transfer *TransferError
	require.ErrorAs(t, fmt.Errorf("run: %w", &TransferError{URL: "u", Err: cause}), &transfer)
	require.ErrorIs(t, transfer, cause)

	extract := &ExtractionError{Archive: "a.pgn.zst", ExitCode: 1}
	require.Contains(t, extract.Error(), "status 1")
	require.NoError(t, extract.Unwrap())

	require.ErrorIs(t, &CleanupError{Path: "p", Err: cause}, cause)
}
