package biometric

import (
	"sync"

	"facevote.io/entities"
	"facevote.io/infrastructure/biometric/types"
	"facevote.io/infrastructure/config"
	"facevote.io/infrastructure/logger"
)

// FaceEncodingService owns the loaded models and hands out encoders in a
// fixed backend order. Models load once, on first use.
type FaceEncodingService struct {
	cfg      config.BiometricConfig
	once     sync.Once
	detector *YuNetFaceService
	arcface  *ArcFaceRecognizer
	dlib     *DlibRecognizer
	facenet  *FaceNetRecognizer
	encoders []types.FaceEncoder
}

var BiometricService *FaceEncodingService

// InitialiseBiometricService registers the service without loading models.
func InitialiseBiometricService(cfg config.BiometricConfig) *FaceEncodingService {
	BiometricService = &FaceEncodingService{cfg: cfg}
	return BiometricService
}

func (s *FaceEncodingService) load() {
	s.once.Do(func() {
		s.detector = NewYuNetFaceService(GetDefaultYuNetConfig(s.cfg.ModelPath("yunet", "face_detection_yunet_2023mar.onnx")))
		s.arcface = NewArcFaceRecognizer(GetDefaultArcFaceConfig(s.cfg.ModelPath()), s.detector)
		s.dlib = NewDlibRecognizer(s.cfg.ModelPath("dlib"))
		s.facenet = NewFaceNetRecognizer(GetDefaultFaceNetConfig(s.cfg.ModelPath()), s.detector)
		s.encoders = []types.FaceEncoder{s.arcface, s.dlib, s.facenet}

		logger.Info("biometric backends loaded", logger.LoggerOptions{
			Key: "backends",
			Data: map[string]bool{
				entities.BackendInsightFace.String():     s.arcface.IsHealthy(),
				entities.BackendFaceRecognition.String(): s.dlib.IsHealthy(),
				entities.BackendFaceNet.String():         s.facenet.IsHealthy(),
			},
		})
	})
}

// Encoders returns every backend in registry order. Backends whose models
// failed to load abstain on every image.
func (s *FaceEncodingService) Encoders() []types.FaceEncoder {
	s.load()
	return s.encoders
}

// Decoder returns the image normaliser used ahead of every encoder.
func (s *FaceEncodingService) Decoder() types.ImageDecoder {
	return Normalizer{MaxDimension: MaxImageDimension}
}

// Statuses reports load state and processing stats per backend.
func (s *FaceEncodingService) Statuses() []types.EncoderStatus {
	statuses := []types.EncoderStatus{}
	for _, enc := range s.Encoders() {
		status := types.EncoderStatus{Backend: enc.Backend(), Dimension: enc.Dimension()}
		if reporter, ok := enc.(types.StatusReporter); ok {
			status.ModelsLoaded = reporter.IsHealthy()
			status.Stats = reporter.GetStats()
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// Close releases every loaded model.
func (s *FaceEncodingService) Close() {
	if s.arcface != nil {
		s.arcface.Close()
	}
	if s.facenet != nil {
		s.facenet.Close()
	}
	if s.dlib != nil {
		s.dlib.Close()
	}
	if s.detector != nil {
		s.detector.Close()
	}
}
