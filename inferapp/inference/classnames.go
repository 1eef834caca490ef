package inference

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	// SourceFile 레이블 파일에서 로드
	SourceFile = "file"
	// SourceBuiltin 내장 기본 레이블 사용
	SourceBuiltin = "builtin"
)

// DefaultClassNames 모델 출력 순서와 동일한 기본 레이블 목록
var DefaultClassNames = []string{
	"Apple___Apple_scab",
	"Apple___Black_rot",
	"Apple___Cedar_apple_rust",
	"Apple___Healthy",
	"Blueberry___Healthy",
	"Cherry_(including_sour)___Powdery_mildew",
	"Cherry_(including_sour)___Healthy",
	"Corn_(maize)___Cercospora_leaf_spot Gray_leaf_spot",
	"Corn_(maize)___Common_rust",
	"Corn_(maize)___Northern_Leaf_Blight",
	"Corn_(maize)___Healthy",
	"Grape___Black_rot",
	"Grape___Esca_(Black_Measles)",
	"Grape___Leaf_blight_(Isariopsis_Leaf_Spot)",
	"Grape___Healthy",
	"Orange___Haunglongbing_(Citrus_greening)",
	"Peach___Bacterial_spot",
	"Peach___Healthy",
	"Pepper,_bell___Bacterial_spot",
	"Pepper,_bell___Healthy",
	"Potato___Early_blight",
	"Potato___Late_blight",
	"Potato___Healthy",
	"Raspberry___Healthy",
	"Soybean___Healthy",
	"Squash___Powdery_mildew",
	"Strawberry___Leaf_scorch",
	"Strawberry___Healthy",
	"Tomato___Bacterial_spot",
	"Tomato___Early_blight",
	"Tomato___Late_blight",
	"Tomato___Leaf_Mold",
	"Tomato___Septoria_leaf_spot",
	"Tomato___Spider_mites Two-spotted_spider_mite",
	"Tomato___Target_Spot",
	"Tomato___Tomato_Yellow_Leaf_Curl_Virus",
	"Tomato___Tomato_mosaic_virus",
	"Tomato___Healthy",
}

// ClassNames 모델 출력 인덱스에 대응하는 레이블 목록
type ClassNames struct {
	labels []string
	Source string
}

// LoadClassNames 레이블 파일을 로드, 파일이 없으면 내장 목록 사용
func LoadClassNames(path string) (ClassNames, error) {
	if path == "" {
		return builtinClassNames(), nil
	}

	fp, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return builtinClassNames(), nil
	} else if err != nil {
		return ClassNames{}, fmt.Errorf("Fail to open class names: %s: %w", path, err)
	}
	defer fp.Close()

	var labels []string
	scanner := bufio.NewScanner(fp)
	for scanner.Scan() {
		labels = append(labels, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return ClassNames{}, fmt.Errorf("Fail to read class names: %s: %w", path, err)
	}

	return ClassNames{labels: labels, Source: SourceFile}, nil
}

func builtinClassNames() ClassNames {
	labels := make([]string, len(DefaultClassNames))
	copy(labels, DefaultClassNames)

	return ClassNames{labels: labels, Source: SourceBuiltin}
}

// NewClassNames 주어진 레이블로 목록 생성
func NewClassNames(labels []string, source string) ClassNames {
	l := make([]string, len(labels))
	copy(l, labels)

	return ClassNames{labels: l, Source: source}
}

// Len 레이블 수
func (cn ClassNames) Len() int {
	return len(cn.labels)
}

// Label idx 번째 레이블, 범위를 벗어나면 "Class_<idx>"
func (cn ClassNames) Label(idx int) string {
	if idx >= 0 && idx < len(cn.labels) {
		return cn.labels[idx]
	}

	return fmt.Sprintf("Class_%d", idx)
}

// Labels 레이블 목록 사본
func (cn ClassNames) Labels() []string {
	labels := make([]string, len(cn.labels))
	copy(labels, cn.labels)

	return labels
}
