package constants

const (
	// ImageSize 모델 입력 이미지의 가로/세로 크기
	ImageSize int = 160
	// MaxImagePixels 디코딩을 허용하는 최대 픽셀 수
	MaxImagePixels int = 40_000_000

	DefaultPort           string = "5000"
	DefaultModelPath      string = "/app/models/plant_disease_model"
	DefaultClassNamesPath string = "/app/models/class_names.txt"

	BackendTensorflow string = "tensorflow"
	BackendONNX       string = "onnx"

	DefaultMaxUploadBytes   int64 = 10 << 20
	DefaultInferenceTimeout int   = 30

	DefaultJournalTable    string = "prediction_tab"
	DefaultListPredictions int    = 10
	MaxListPredictions     int    = 100
	ShutdownTimeoutSeconds int    = 5
	JournalConnectRetries  uint64 = 5
)
