package inference

import "strings"

const (
	labelDelimiter = "___"
	unknownSpecies = "Unknown"
	healthy        = "Healthy"
)

// 질병명에서 제거하는 부가 설명
var diseaseQualifiers = []string{
	"(including sour)",
	"(Citrus greening)",
}

// ParseLabel "<Species>___<Condition>" 형식의 레이블을 (species, disease)로 분리
func ParseLabel(label string) (species, disease string) {
	idx := strings.Index(label, labelDelimiter)
	if idx < 0 {
		return unknownSpecies, humanize(label)
	}

	species = humanize(label[:idx])
	disease = humanize(label[idx+len(labelDelimiter):])

	if IsHealthy(disease) {
		return species, healthy
	}

	for _, q := range diseaseQualifiers {
		disease = strings.TrimSpace(strings.ReplaceAll(disease, q, ""))
	}

	return species, disease
}

// IsHealthy 질병명이 정상(healthy)인지 확인
func IsHealthy(disease string) bool {
	return strings.EqualFold(disease, healthy)
}

func humanize(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "_", " "))
}
