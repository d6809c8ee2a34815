package entities

// Backend names one independent face-detection-and-embedding algorithm.
type Backend string

const (
	BackendInsightFace     Backend = "insightface"
	BackendFaceRecognition Backend = "face_recognition"
	BackendFaceNet         Backend = "facenet"
)

// Backends is the fixed run and report order of the configured backends.
var Backends = []Backend{BackendInsightFace, BackendFaceRecognition, BackendFaceNet}

func (b Backend) String() string {
	return string(b)
}

func (b Backend) IsKnown() bool {
	for _, known := range Backends {
		if b == known {
			return true
		}
	}
	return false
}

func BackendNames(backends []Backend) []string {
	names := make([]string, 0, len(backends))
	for _, b := range backends {
		names = append(names, string(b))
	}
	return names
}
