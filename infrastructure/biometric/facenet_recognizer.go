package biometric

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"
	"time"

	"facevote.io/entities"
	"facevote.io/infrastructure/biometric/types"
	"facevote.io/infrastructure/logger"
	"gocv.io/x/gocv"
)

const (
	// FaceNetDimension is the embedding size produced by the FaceNet model.
	FaceNetDimension = 512
	// faceNetMargin expands the detected box on each side by this fraction
	// of its shorter side before cropping.
	faceNetMargin = 0.3
)

// ImageNet channel statistics in RGB order.
var (
	imageNetMean = [3]float32{0.485, 0.456, 0.406}
	imageNetStd  = [3]float32{0.229, 0.224, 0.225}
)

// FaceNetRecognizer is the facenet backend. It reuses the YuNet detector and
// embeds a margin-expanded crop.
type FaceNetRecognizer struct {
	statsRecorder
	net          gocv.Net
	detector     *YuNetFaceService
	inputSize    image.Point
	modelsLoaded bool
	mutex        sync.Mutex
}

// FaceNetConfig holds configuration for FaceNet model
type FaceNetConfig struct {
	ModelPath string
	InputSize image.Point
	Backend   gocv.NetBackendType
	Target    gocv.NetTargetType
}

// NewFaceNetRecognizer creates a new FaceNet recognizer
func NewFaceNetRecognizer(config FaceNetConfig, detector *YuNetFaceService) *FaceNetRecognizer {
	recognizer := &FaceNetRecognizer{
		detector:  detector,
		inputSize: config.InputSize,
	}

	if err := recognizer.loadModel(config); err != nil {
		logger.Error("Failed to load FaceNet model", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return recognizer
	}

	recognizer.modelsLoaded = true
	logger.Info("FaceNet recognizer initialized successfully", logger.LoggerOptions{
		Key: "config",
		Data: map[string]interface{}{
			"model_path": config.ModelPath,
			"input_size": fmt.Sprintf("%dx%d", config.InputSize.X, config.InputSize.Y),
		},
	})
	return recognizer
}

// loadModel loads the FaceNet ONNX model
func (fn *FaceNetRecognizer) loadModel(config FaceNetConfig) error {
	if _, err := os.Stat(config.ModelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", config.ModelPath)
	}

	fn.net = gocv.ReadNet(config.ModelPath, "")
	if fn.net.Empty() {
		return fmt.Errorf("failed to load FaceNet model from %s", config.ModelPath)
	}
	fn.net.SetPreferableBackend(config.Backend)
	fn.net.SetPreferableTarget(config.Target)
	return nil
}

func (fn *FaceNetRecognizer) Backend() entities.Backend { return entities.BackendFaceNet }
func (fn *FaceNetRecognizer) Dimension() int            { return FaceNetDimension }

// IsHealthy reports whether both the detector and the embedding model loaded.
func (fn *FaceNetRecognizer) IsHealthy() bool {
	return fn.modelsLoaded && fn.detector != nil && fn.detector.IsHealthy()
}

// DetectAndEncode picks the most confident face, crops it with a margin and
// embeds it.
func (fn *FaceNetRecognizer) DetectAndEncode(ctx context.Context, frame types.Frame) (*types.Detection, error) {
	startTime := time.Now()
	if !fn.IsHealthy() {
		return nil, nil
	}

	img, err := matOf(frame)
	if err != nil {
		return nil, err
	}

	result, err := fn.detector.DetectFaces(img)
	if err != nil {
		fn.updateStats(time.Since(startTime), false)
		return nil, err
	}
	// No extra floor here: the detector's own score threshold applies.
	best := selectMostConfident(result.Confidences)
	if best < 0 {
		fn.updateStats(time.Since(startTime), false)
		return nil, nil
	}
	if err := fn.stopIfDone(ctx, startTime); err != nil {
		return nil, err
	}

	box := expandBox(result.Faces[best], faceNetMargin, image.Rect(0, 0, img.Cols(), img.Rows()))
	if box.Empty() {
		fn.updateStats(time.Since(startTime), false)
		return nil, nil
	}
	face := img.Region(box)
	defer face.Close()

	raw, err := fn.ExtractEmbedding(face)
	if err != nil {
		fn.updateStats(time.Since(startTime), false)
		return nil, err
	}
	embedding, err := entities.NormalizeEmbedding(raw)
	if err != nil {
		logger.Warning("facenet produced a degenerate embedding", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		fn.updateStats(time.Since(startTime), false)
		return nil, nil
	}

	fn.updateStats(time.Since(startTime), true)
	return &types.Detection{
		Embedding:  embedding,
		Confidence: float64(result.Confidences[best]),
		Box:        box,
	}, nil
}

// ExtractEmbedding extracts a raw 512-dimensional embedding from a face crop
func (fn *FaceNetRecognizer) ExtractEmbedding(face gocv.Mat) ([]float32, error) {
	if face.Empty() {
		return nil, fmt.Errorf("empty face image")
	}

	preprocessed := fn.preprocessFace(face)
	defer preprocessed.Close()

	// Input is already RGB, scaled and standardised.
	blob := gocv.BlobFromImage(preprocessed, 1.0, fn.inputSize, gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	fn.mutex.Lock()
	defer fn.mutex.Unlock()
	if !fn.modelsLoaded {
		return nil, fmt.Errorf("FaceNet model not loaded")
	}

	fn.net.SetInput(blob, "")
	output := fn.net.Forward("")
	defer output.Close()

	return readEmbedding(output, FaceNetDimension)
}

// preprocessFace resizes to the model input, converts to RGB in [0, 1] and
// applies ImageNet standardisation per channel.
func (fn *FaceNetRecognizer) preprocessFace(face gocv.Mat) gocv.Mat {
	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(face, &resized, fn.inputSize, 0, 0, gocv.InterpolationLinear)

	rgb := gocv.NewMat()
	defer rgb.Close()
	if resized.Channels() == 1 {
		gocv.CvtColor(resized, &rgb, gocv.ColorGrayToRGB)
	} else {
		gocv.CvtColor(resized, &rgb, gocv.ColorBGRToRGB)
	}

	scaled := gocv.NewMat()
	defer scaled.Close()
	rgb.ConvertToWithParams(&scaled, gocv.MatTypeCV32FC3, 1.0/255.0, 0)

	channels := gocv.Split(scaled)
	for i := range channels {
		channels[i].SubtractFloat(imageNetMean[i])
		channels[i].DivideFloat(imageNetStd[i])
	}

	standardised := gocv.NewMat()
	gocv.Merge(channels, &standardised)
	for i := range channels {
		channels[i].Close()
	}
	return standardised
}

// Close releases resources
func (fn *FaceNetRecognizer) Close() error {
	fn.mutex.Lock()
	defer fn.mutex.Unlock()

	if fn.modelsLoaded && !fn.net.Empty() {
		if err := fn.net.Close(); err != nil {
			return fmt.Errorf("failed to close FaceNet network: %v", err)
		}
	}
	fn.modelsLoaded = false
	logger.Info("FaceNet recognizer closed")
	return nil
}

// GetDefaultFaceNetConfig returns default configuration for FaceNet
func GetDefaultFaceNetConfig(modelsDir string) FaceNetConfig {
	return FaceNetConfig{
		ModelPath: firstExisting(modelsDir+"/facenet",
			"facenet_vggface2.onnx",
			"facenet512.onnx",
			"facenet.onnx",
		),
		InputSize: image.Pt(160, 160),
		Backend:   gocv.NetBackendDefault,
		Target:    gocv.NetTargetCPU,
	}
}
