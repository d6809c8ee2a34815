package biometric

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"facevote.io/entities"
	"facevote.io/infrastructure/biometric/types"
	"facevote.io/infrastructure/logger"
	"github.com/Kagami/go-face"
	"gocv.io/x/gocv"
)

// DlibDimension is the descriptor size produced by the dlib ResNet model.
const DlibDimension = 128

// CLAHE parameters applied to the lightness channel before detection.
const (
	claheClipLimit = 2.0
	claheTileSize  = 8
)

// DlibRecognizer is the face_recognition backend. It enhances contrast,
// tries the CNN detector, falls back to HOG and ranks candidates by quality,
// size and position.
type DlibRecognizer struct {
	statsRecorder
	rec          *face.Recognizer
	modelsLoaded bool
	mutex        sync.Mutex
}

// NewDlibRecognizer loads the dlib models from modelsDir. The directory
// should contain shape_predictor_5_face_landmarks.dat,
// dlib_face_recognition_resnet_model_v1.dat and optionally
// mmod_human_face_detector.dat for CNN detection.
func NewDlibRecognizer(modelsDir string) *DlibRecognizer {
	recognizer := &DlibRecognizer{}

	rec, err := face.NewRecognizer(modelsDir)
	if err != nil {
		logger.Error("Failed to load dlib models", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return recognizer
	}

	recognizer.rec = rec
	recognizer.modelsLoaded = true
	logger.Info("dlib recognizer initialized successfully", logger.LoggerOptions{
		Key:  "models_dir",
		Data: modelsDir,
	})
	return recognizer
}

func (dr *DlibRecognizer) Backend() entities.Backend { return entities.BackendFaceRecognition }
func (dr *DlibRecognizer) Dimension() int            { return DlibDimension }
func (dr *DlibRecognizer) IsHealthy() bool           { return dr.modelsLoaded }

// DetectAndEncode enhances the frame, detects candidate faces and returns the
// descriptor of the best ranked candidate.
func (dr *DlibRecognizer) DetectAndEncode(ctx context.Context, frame types.Frame) (*types.Detection, error) {
	startTime := time.Now()
	if !dr.modelsLoaded {
		return nil, nil
	}

	img, err := matOf(frame)
	if err != nil {
		return nil, err
	}

	enhanced, err := enhanceContrast(img)
	if err != nil {
		dr.updateStats(time.Since(startTime), false)
		return nil, err
	}
	defer enhanced.Close()

	encoded, err := gocv.IMEncode(gocv.JPEGFileExt, enhanced)
	if err != nil {
		dr.updateStats(time.Since(startTime), false)
		return nil, fmt.Errorf("failed to encode enhanced image: %w", err)
	}
	jpeg := append([]byte(nil), encoded.GetBytes()...)
	encoded.Close()

	if err := dr.stopIfDone(ctx, startTime); err != nil {
		return nil, err
	}

	faces, err := dr.recognize(jpeg)
	if err != nil {
		dr.updateStats(time.Since(startTime), false)
		return nil, err
	}
	if len(faces) == 0 {
		dr.updateStats(time.Since(startTime), false)
		return nil, nil
	}

	boxes := make([]image.Rectangle, len(faces))
	for i, f := range faces {
		boxes[i] = f.Rectangle
	}
	best, score := RankCandidates(enhanced, boxes)
	if best < 0 {
		logger.Debug("no dlib candidate passed ranking", logger.LoggerOptions{
			Key:  "best_score",
			Data: score,
		})
		dr.updateStats(time.Since(startTime), false)
		return nil, nil
	}

	descriptor := faces[best].Descriptor
	embedding, err := entities.NormalizeEmbedding(descriptor[:])
	if err != nil {
		logger.Warning("face_recognition produced a degenerate embedding", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		dr.updateStats(time.Since(startTime), false)
		return nil, nil
	}

	dr.updateStats(time.Since(startTime), true)
	return &types.Detection{
		Embedding:  embedding,
		Confidence: score,
		Box:        faces[best].Rectangle,
	}, nil
}

// recognize runs the CNN detector and falls back to HOG when it fails or
// finds nothing.
func (dr *DlibRecognizer) recognize(jpeg []byte) ([]face.Face, error) {
	dr.mutex.Lock()
	defer dr.mutex.Unlock()

	faces, err := dr.rec.RecognizeCNN(jpeg)
	if err == nil && len(faces) > 0 {
		return faces, nil
	}
	if err != nil {
		logger.Debug("CNN face detection failed, falling back to HOG", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
	}

	faces, err = dr.rec.Recognize(jpeg)
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}
	return faces, nil
}

// enhanceContrast applies CLAHE to the L channel in Lab space. The caller
// owns the returned Mat.
func enhanceContrast(img gocv.Mat) (gocv.Mat, error) {
	bgr := img
	if img.Channels() == 1 {
		bgr = gocv.NewMat()
		defer bgr.Close()
		gocv.CvtColor(img, &bgr, gocv.ColorGrayToBGR)
	}

	lab := gocv.NewMat()
	defer lab.Close()
	gocv.CvtColor(bgr, &lab, gocv.ColorBGRToLab)

	channels := gocv.Split(lab)
	defer func() {
		for i := range channels {
			channels[i].Close()
		}
	}()
	if len(channels) != 3 {
		return gocv.Mat{}, fmt.Errorf("unexpected channel count %d", len(channels))
	}

	clahe := gocv.NewCLAHEWithParams(claheClipLimit, image.Pt(claheTileSize, claheTileSize))
	defer clahe.Close()
	lightness := gocv.NewMat()
	clahe.Apply(channels[0], &lightness)
	channels[0].Close()
	channels[0] = lightness

	merged := gocv.NewMat()
	defer merged.Close()
	gocv.Merge(channels, &merged)

	out := gocv.NewMat()
	gocv.CvtColor(merged, &out, gocv.ColorLabToBGR)
	return out, nil
}

// Close releases the recognizer resources.
func (dr *DlibRecognizer) Close() error {
	dr.mutex.Lock()
	defer dr.mutex.Unlock()

	if dr.rec != nil {
		dr.rec.Close()
		dr.rec = nil
	}
	dr.modelsLoaded = false
	return nil
}
