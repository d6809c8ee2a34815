package biometric

import (
	"fmt"
	"image"
	"os"
	"sync"
	"time"

	"facevote.io/infrastructure/logger"
	"gocv.io/x/gocv"
)

// DetectorConfidenceFloor is the minimum detector score accepted by the
// embedding-model backends.
const DetectorConfidenceFloor = 0.6

// YuNetFaceService provides face detection using YuNet. It is shared by the
// insightface and facenet encoders.
type YuNetFaceService struct {
	statsRecorder
	detector            gocv.FaceDetectorYN
	confidenceThreshold float32
	modelsLoaded        bool
	mutex               sync.Mutex
}

// YuNetConfig holds configuration for YuNet service
type YuNetConfig struct {
	ModelPath           string
	InputSize           image.Point
	ConfidenceThreshold float32
	NMSThreshold        float32
	TopK                int
}

// YuNetDetectionResult holds detection results with landmarks
type YuNetDetectionResult struct {
	Faces          []image.Rectangle
	Confidences    []float32
	Landmarks      [][]gocv.Point2f // right_eye, left_eye, nose, right_mouth, left_mouth
	ProcessingTime time.Duration
}

// NewYuNetFaceService creates a new YuNet face service. A missing model
// leaves the service unhealthy rather than failing start-up.
func NewYuNetFaceService(config YuNetConfig) *YuNetFaceService {
	service := &YuNetFaceService{
		confidenceThreshold: config.ConfidenceThreshold,
	}

	if err := service.loadModel(config); err != nil {
		logger.Error("Failed to load YuNet model", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return service
	}

	service.modelsLoaded = true
	logger.Info("YuNet face service initialized successfully")
	return service
}

func (yfs *YuNetFaceService) loadModel(config YuNetConfig) error {
	if _, err := os.Stat(config.ModelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", config.ModelPath)
	}

	detector := gocv.NewFaceDetectorYN(config.ModelPath, "", config.InputSize)
	detector.SetScoreThreshold(config.ConfidenceThreshold)
	detector.SetNMSThreshold(config.NMSThreshold)
	detector.SetTopK(config.TopK)
	yfs.detector = detector

	logger.Info("YuNet model loaded successfully", logger.LoggerOptions{
		Key: "model_info",
		Data: map[string]interface{}{
			"model_path":           config.ModelPath,
			"input_size":           fmt.Sprintf("%dx%d", config.InputSize.X, config.InputSize.Y),
			"confidence_threshold": config.ConfidenceThreshold,
			"nms_threshold":        config.NMSThreshold,
			"top_k":                config.TopK,
		},
	})
	return nil
}

// DetectFaces performs face detection using YuNet
func (yfs *YuNetFaceService) DetectFaces(img gocv.Mat) (*YuNetDetectionResult, error) {
	startTime := time.Now()

	if !yfs.modelsLoaded {
		return nil, fmt.Errorf("YuNet model not loaded")
	}

	yfs.mutex.Lock()
	yfs.detector.SetInputSize(image.Pt(img.Cols(), img.Rows()))
	facesMat := gocv.NewMat()
	yfs.detector.Detect(img, &facesMat)
	yfs.mutex.Unlock()
	defer facesMat.Close()

	faces, confidences, landmarks := parseDetections(facesMat, img.Cols(), img.Rows())
	processingTime := time.Since(startTime)
	yfs.updateStats(processingTime, len(faces) > 0)

	logger.Debug("YuNet face detection completed", logger.LoggerOptions{
		Key: "detection_result",
		Data: map[string]interface{}{
			"faces_detected":     len(faces),
			"processing_time_ms": processingTime.Milliseconds(),
		},
	})

	return &YuNetDetectionResult{
		Faces:          faces,
		Confidences:    confidences,
		Landmarks:      landmarks,
		ProcessingTime: processingTime,
	}, nil
}

// parseDetections parses the detection results from YuNet
// YuNet output format: [x, y, w, h, x_re, y_re, x_le, y_le, x_nt, y_nt, x_rcm, y_rcm, x_lcm, y_lcm, score]
// Boxes are clipped to the image; boxes with no remaining area are dropped.
func parseDetections(facesMat gocv.Mat, cols, rows int) ([]image.Rectangle, []float32, [][]gocv.Point2f) {
	var faces []image.Rectangle
	var confidences []float32
	var landmarks [][]gocv.Point2f

	if facesMat.Empty() || facesMat.Rows() == 0 {
		return faces, confidences, landmarks
	}

	bounds := image.Rect(0, 0, cols, rows)
	for i := 0; i < facesMat.Rows(); i++ {
		x := int(facesMat.GetFloatAt(i, 0))
		y := int(facesMat.GetFloatAt(i, 1))
		w := int(facesMat.GetFloatAt(i, 2))
		h := int(facesMat.GetFloatAt(i, 3))
		confidence := facesMat.GetFloatAt(i, 14)

		face := image.Rect(x, y, x+w, y+h).Intersect(bounds)
		if face.Empty() {
			continue
		}
		faces = append(faces, face)
		confidences = append(confidences, confidence)

		points := make([]gocv.Point2f, 0, 5)
		for c := 4; c < 14; c += 2 {
			points = append(points, gocv.Point2f{X: facesMat.GetFloatAt(i, c), Y: facesMat.GetFloatAt(i, c+1)})
		}
		landmarks = append(landmarks, points)
	}

	return faces, confidences, landmarks
}

// IsHealthy checks if the service is healthy
func (yfs *YuNetFaceService) IsHealthy() bool {
	return yfs.modelsLoaded
}

// Close releases resources
func (yfs *YuNetFaceService) Close() {
	if yfs.modelsLoaded {
		yfs.detector.Close()
	}
}

// GetDefaultYuNetConfig returns default YuNet configuration
func GetDefaultYuNetConfig(modelPath string) YuNetConfig {
	return YuNetConfig{
		ModelPath:           modelPath,
		InputSize:           image.Pt(640, 640),
		ConfidenceThreshold: DetectorConfidenceFloor,
		NMSThreshold:        0.3,
		TopK:                5000,
	}
}
