package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCheckboxLike(t *testing.T) {
	for name, want := range map[string]bool{
		"GeneralLiability_OccurrenceIndicator_A":   true,
		"CertificateOfInsurance_CheckBox":          true,
		"Policy_Check_A":                           true,
		"Umbrella_ClaimsMadeIndicator":             true,
		"CertificateHolder_FullName_A":             false,
		"Box_Text_A":                               false,
		"CheckNumber":                              false,
		"Indicator_Description_A":                  false,
		"Producer_ContactPerson_PhoneNumber_A":     false,
		"CertificateHolder_MailingAddress_LineOne": false,
	} {
		assert.Equal(t, want, IsCheckboxLike(name), name)
	}
}

func TestCanonical(t *testing.T) {
	for _, tok := range []string{"/Yes", "/On", "/1", "Yes", "On", "1", "true", "True", "Y", "y", "checked"} {
		c, ok := Canonical(tok)
		require.True(t, ok, tok)
		assert.Equal(t, Checked, c, tok)
	}
	for _, tok := range []string{"/Off", "No", "Off", "0", "false", "False", "N", "n", "unchecked"} {
		c, ok := Canonical(tok)
		require.True(t, ok, tok)
		assert.Equal(t, Unchecked, c, tok)
	}
	for _, tok := range []string{"", "YES", "maybe", "/X"} {
		_, ok := Canonical(tok)
		assert.False(t, ok, tok)
	}
}

func TestMergePlainIncomingWins(t *testing.T) {
	got := Merge(
		map[string]string{"Name": "new", "City": ""},
		map[string]string{"Name": "old", "City": "Austin", "Zip": "78701"},
	)
	assert.Equal(t, map[string]string{"Name": "new", "City": ""}, got)
}

func TestMergeCheckboxRules(t *testing.T) {
	existing := map[string]string{
		"A_Indicator": Checked,
		"B_Indicator": Checked,
		"C_Indicator": Unchecked,
		"D_Indicator": Checked,
		"E_Indicator": "/Yes",
	}
	got := Merge(map[string]string{
		"A_Indicator": "",
		"B_Indicator": "N",
		"C_Indicator": "garbage",
		"F_Indicator": "/1",
	}, existing)

	assert.Equal(t, map[string]string{
		"A_Indicator": Checked,
		"B_Indicator": Unchecked,
		"C_Indicator": Unchecked,
		"D_Indicator": Checked,
		"E_Indicator": Checked,
		"F_Indicator": Checked,
	}, got)
}

func TestMergePreservesOmittedCheckedBox(t *testing.T) {
	got := Merge(map[string]string{"Other": "x"}, map[string]string{"f_checkbox": Checked})
	assert.Equal(t, Checked, got["f_checkbox"])

	for _, off := range []string{"unchecked", "/Off", "Off", "0", "false", "N"} {
		got = Merge(map[string]string{"f_checkbox": off}, map[string]string{"f_checkbox": Checked})
		assert.Equal(t, Unchecked, got["f_checkbox"], off)
	}
}

func TestMergeIdempotent(t *testing.T) {
	existing := map[string]string{"A_Indicator": Checked, "B_Box": Unchecked, "Plain": "p"}
	cases := []map[string]string{
		{"A_Indicator": "", "B_Box": ""},
		{"A_Indicator": "/Off", "B_Box": "Yes"},
		{"A_Indicator": "random", "C_Check": "1"},
		{},
	}
	for _, v := range cases {
		once := Merge(v, existing)
		assert.Equal(t, once, Merge(v, once))
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	in := map[string]string{"A_Indicator": "Yes"}
	ex := map[string]string{"A_Indicator": Unchecked, "B": "b"}
	_ = Merge(in, ex)
	assert.Equal(t, map[string]string{"A_Indicator": "Yes"}, in)
	assert.Equal(t, map[string]string{"A_Indicator": Unchecked, "B": "b"}, ex)
}

func TestAggregateFillOnlyIfEmpty(t *testing.T) {
	got := Aggregate(map[string]string{"A": "x"}, nil, map[string]string{"A": "y"}, nil)
	assert.Equal(t, "x", got["A"])

	got = Aggregate(map[string]string{"A": ""}, nil, map[string]string{"A": "y"}, nil)
	assert.Equal(t, "y", got["A"])

	got = Aggregate(map[string]string{"A": " "}, nil, nil, map[string]string{"A": "ni"})
	assert.Equal(t, "ni", got["A"])
}

func TestAggregateHolderOverwrites(t *testing.T) {
	got := Aggregate(map[string]string{"A": "x", "B": "keep"}, map[string]string{"A": "z", "B": ""}, nil, nil)
	assert.Equal(t, "z", got["A"])
	assert.Equal(t, "keep", got["B"])
}

func TestAggregatePrecedence(t *testing.T) {
	got := Aggregate(
		map[string]string{"Holder": "", "Producer": ""},
		map[string]string{"Holder": "Jane Doe"},
		map[string]string{"Producer": "Agency", "Holder": "Agency"},
		map[string]string{"Producer": "Insured", "Insured": "Acme"},
	)
	assert.Equal(t, map[string]string{"Holder": "Jane Doe", "Producer": "Agency", "Insured": "Acme"}, got)
}

func TestAggregateNormalizesCheckboxes(t *testing.T) {
	got := Aggregate(
		map[string]string{"A_Indicator": "/Yes", "B_Indicator": "", "C_Indicator": "custom"},
		nil,
		map[string]string{"D_Indicator": "Off"},
		nil,
	)
	assert.Equal(t, Checked, got["A_Indicator"])
	assert.Equal(t, Unchecked, got["B_Indicator"])
	assert.Equal(t, "custom", got["C_Indicator"])
	assert.Equal(t, Unchecked, got["D_Indicator"])
}

func TestOverlay(t *testing.T) {
	got := Overlay(map[string]string{"a": "1", "b": "2"}, map[string]string{"b": "3", "c": "4"})
	assert.Equal(t, map[string]string{"a": "1", "b": "3", "c": "4"}, got)
}
