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

// ArcFaceDimension is the embedding size produced by the ArcFace model.
const ArcFaceDimension = 512

// ArcFaceRecognizer is the insightface backend: YuNet detection followed by
// an ArcFace embedding of the most confident face, aligned on its landmarks.
type ArcFaceRecognizer struct {
	statsRecorder
	net          gocv.Net
	detector     *YuNetFaceService
	inputSize    image.Point
	modelsLoaded bool
	mutex        sync.Mutex
}

// ArcFaceConfig holds configuration for ArcFace model
type ArcFaceConfig struct {
	ModelPath string
	InputSize image.Point
	Backend   gocv.NetBackendType
	Target    gocv.NetTargetType
}

// NewArcFaceRecognizer creates a new ArcFace recognizer
func NewArcFaceRecognizer(config ArcFaceConfig, detector *YuNetFaceService) *ArcFaceRecognizer {
	recognizer := &ArcFaceRecognizer{
		detector:  detector,
		inputSize: config.InputSize,
	}

	if err := recognizer.loadModel(config); err != nil {
		logger.Error("Failed to load ArcFace model", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return recognizer
	}

	recognizer.modelsLoaded = true
	logger.Info("ArcFace recognizer initialized successfully", logger.LoggerOptions{
		Key: "config",
		Data: map[string]interface{}{
			"model_path": config.ModelPath,
			"input_size": fmt.Sprintf("%dx%d", config.InputSize.X, config.InputSize.Y),
		},
	})
	return recognizer
}

// loadModel loads the ArcFace ONNX model
func (af *ArcFaceRecognizer) loadModel(config ArcFaceConfig) error {
	if _, err := os.Stat(config.ModelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", config.ModelPath)
	}

	af.net = gocv.ReadNet(config.ModelPath, "")
	if af.net.Empty() {
		return fmt.Errorf("failed to load ArcFace model from %s", config.ModelPath)
	}
	af.net.SetPreferableBackend(config.Backend)
	af.net.SetPreferableTarget(config.Target)
	return nil
}

func (af *ArcFaceRecognizer) Backend() entities.Backend { return entities.BackendInsightFace }
func (af *ArcFaceRecognizer) Dimension() int            { return ArcFaceDimension }

// IsHealthy reports whether both the detector and the embedding model loaded.
func (af *ArcFaceRecognizer) IsHealthy() bool {
	return af.modelsLoaded && af.detector != nil && af.detector.IsHealthy()
}

// DetectAndEncode picks the face with the highest detector score and embeds it.
func (af *ArcFaceRecognizer) DetectAndEncode(ctx context.Context, frame types.Frame) (*types.Detection, error) {
	startTime := time.Now()
	if !af.IsHealthy() {
		return nil, nil
	}

	img, err := matOf(frame)
	if err != nil {
		return nil, err
	}

	result, err := af.detector.DetectFaces(img)
	if err != nil {
		af.updateStats(time.Since(startTime), false)
		return nil, err
	}
	best := selectMostConfident(result.Confidences)
	if best < 0 || result.Confidences[best] < DetectorConfidenceFloor {
		af.updateStats(time.Since(startTime), false)
		return nil, nil
	}
	if err := af.stopIfDone(ctx, startTime); err != nil {
		return nil, err
	}

	box := result.Faces[best]
	face := af.faceCrop(img, result, best)
	defer face.Close()

	raw, err := af.ExtractEmbedding(face)
	if err != nil {
		af.updateStats(time.Since(startTime), false)
		return nil, err
	}
	embedding, err := entities.NormalizeEmbedding(raw)
	if err != nil {
		logger.Warning("insightface produced a degenerate embedding", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		af.updateStats(time.Since(startTime), false)
		return nil, nil
	}

	af.updateStats(time.Since(startTime), true)
	return &types.Detection{
		Embedding:  embedding,
		Confidence: float64(result.Confidences[best]),
		Box:        box,
	}, nil
}

// faceCrop returns the landmark-aligned face at index best, or the raw box
// crop when the detector gave no usable landmarks.
func (af *ArcFaceRecognizer) faceCrop(img gocv.Mat, result *YuNetDetectionResult, best int) gocv.Mat {
	if best < len(result.Landmarks) {
		if aligned, ok := alignFace(img, result.Landmarks[best], af.inputSize); ok {
			return aligned
		}
	}
	logger.Debug("insightface falling back to an unaligned crop")
	return img.Region(result.Faces[best])
}

// ExtractEmbedding extracts a raw 512-dimensional embedding from a face crop
func (af *ArcFaceRecognizer) ExtractEmbedding(face gocv.Mat) ([]float32, error) {
	if face.Empty() {
		return nil, fmt.Errorf("empty face image")
	}

	preprocessed := af.preprocessFace(face)
	defer preprocessed.Close()

	// ArcFace expects input: [1, 3, 112, 112] scaled to [-1, 1]
	blob := gocv.BlobFromImage(
		preprocessed,
		1.0/127.5,
		af.inputSize,
		gocv.NewScalar(127.5, 127.5, 127.5, 0),
		true,
		false,
	)
	defer blob.Close()

	af.mutex.Lock()
	defer af.mutex.Unlock()
	if !af.modelsLoaded {
		return nil, fmt.Errorf("ArcFace model not loaded")
	}

	af.net.SetInput(blob, "")
	output := af.net.Forward("")
	defer output.Close()

	return readEmbedding(output, ArcFaceDimension)
}

// preprocessFace preprocesses face image for ArcFace model
func (af *ArcFaceRecognizer) preprocessFace(face gocv.Mat) gocv.Mat {
	resized := gocv.NewMat()
	gocv.Resize(face, &resized, af.inputSize, 0, 0, gocv.InterpolationLinear)

	if resized.Channels() == 1 {
		bgr := gocv.NewMat()
		gocv.CvtColor(resized, &bgr, gocv.ColorGrayToBGR)
		resized.Close()
		return bgr
	}
	return resized
}

// readEmbedding copies the first dim values of a [1, dim] network output.
func readEmbedding(output gocv.Mat, dim int) ([]float32, error) {
	if output.Empty() || output.Total() < dim {
		return nil, fmt.Errorf("unexpected network output size %d, want %d", output.Total(), dim)
	}
	embedding := make([]float32, dim)
	for i := 0; i < dim; i++ {
		embedding[i] = output.GetFloatAt(0, i)
	}
	return embedding, nil
}

// Close releases resources
func (af *ArcFaceRecognizer) Close() error {
	af.mutex.Lock()
	defer af.mutex.Unlock()

	if af.modelsLoaded && !af.net.Empty() {
		if err := af.net.Close(); err != nil {
			return fmt.Errorf("failed to close ArcFace network: %v", err)
		}
	}
	af.modelsLoaded = false
	logger.Info("ArcFace recognizer closed")
	return nil
}

// GetDefaultArcFaceConfig returns default configuration for ArcFace, using
// the first model file found under modelsDir.
func GetDefaultArcFaceConfig(modelsDir string) ArcFaceConfig {
	return ArcFaceConfig{
		ModelPath: firstExisting(modelsDir+"/arcface",
			"arcface_r100.onnx",
			"arcface_r50.onnx",
			"arcface_resnet50.onnx",
			"arcface.onnx",
		),
		InputSize: image.Pt(112, 112),
		Backend:   gocv.NetBackendDefault,
		Target:    gocv.NetTargetCPU,
	}
}

// firstExisting returns the first candidate file present in dir, or the last
// candidate when none exists.
func firstExisting(dir string, candidates ...string) string {
	for _, name := range candidates {
		path := dir + "/" + name
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return dir + "/" + candidates[len(candidates)-1]
}
