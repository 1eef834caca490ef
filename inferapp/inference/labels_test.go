package inference

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLabel(t *testing.T) {
	cases := []struct {
		label   string
		species string
		disease string
	}{
		{"Tomato___Healthy", "Tomato", "Healthy"},
		{"Apple___healthy", "Apple", "Healthy"},
		{"Corn_(maize)___Common_rust", "Corn (maize)", "Common rust"},
		{"Unlabeled", "Unknown", "Unlabeled"},
		{"Some_label_name", "Unknown", "Some label name"},
		{"Orange___Haunglongbing_(Citrus_greening)", "Orange", "Haunglongbing"},
		{"Cherry_(including_sour)___Powdery_mildew", "Cherry (including sour)", "Powdery mildew"},
		{"Tomato___Spider_mites Two-spotted_spider_mite", "Tomato", "Spider mites Two-spotted spider mite"},
		{"Grape___Esca_(Black_Measles)", "Grape", "Esca (Black Measles)"},
		{"Pepper,_bell___Bacterial_spot", "Pepper, bell", "Bacterial spot"},
		{"A___B___C", "A", "B   C"},
		{"___", "", ""},
	}

	for _, c := range cases {
		species, disease := ParseLabel(c.label)
		require.Equal(t, c.species, species, c.label)
		require.Equal(t, c.disease, disease, c.label)
	}
}

func TestParseLabelDefaultClassNames(t *testing.T) {
	for _, label := range DefaultClassNames {
		species, disease := ParseLabel(label)
		require.NotEqual(t, unknownSpecies, species, label)
		require.NotEmpty(t, disease, label)
		require.NotContains(t, disease, "_", label)
	}
}
