package similarity

import "facevote.io/entities"

// Metric selects how two unit vectors are turned into a similarity score.
type Metric string

const (
	// MetricCosine is the raw dot product, range [-1, 1].
	MetricCosine Metric = "cosine"
	// MetricCosineRescaled maps the dot product onto [0, 1] via (cos+1)/2.
	MetricCosineRescaled Metric = "cosine_rescaled"
	// MetricEuclidean is 1/(1+L2 distance), range (0, 1].
	MetricEuclidean Metric = "euclidean"
)

// DefaultThreshold applies to a backend with no profile.
const DefaultThreshold = 0.6

// QualityThresholdWeight scales how much a healthy probe loosens the bar:
// threshold * (1 - QualityThresholdWeight*quality).
const QualityThresholdWeight = 0.2

// Profile holds one backend's metric semantics and acceptance threshold.
// Thresholds are tuned per metric scale and are not request parameters.
type Profile struct {
	Backend         entities.Backend `json:"backend"`
	Metric          Metric           `json:"metric"`
	Threshold       float64          `json:"threshold"`
	Dimension       int              `json:"dimension"`
	QualityAdjusted bool             `json:"quality_adjusted"`
	QualityVariant  QualityVariant   `json:"quality_variant,omitempty"`
}

var profiles = map[entities.Backend]Profile{
	// ArcFace (buffalo_l w600k_r50), 512-d, raw cosine.
	entities.BackendInsightFace: {
		Backend:   entities.BackendInsightFace,
		Metric:    MetricCosine,
		Threshold: 0.35,
		Dimension: 512,
	},
	// dlib ResNet, 128-d, distance based.
	entities.BackendFaceRecognition: {
		Backend:   entities.BackendFaceRecognition,
		Metric:    MetricEuclidean,
		Threshold: 0.75,
		Dimension: 128,
	},
	// InceptionResnetV1 (vggface2), 512-d, cosine rescaled to [0,1].
	entities.BackendFaceNet: {
		Backend:         entities.BackendFaceNet,
		Metric:          MetricCosineRescaled,
		Threshold:       0.65,
		Dimension:       512,
		QualityAdjusted: true,
		QualityVariant:  QualityStrict,
	},
}

// ProfileFor returns the documented profile of backend. ok is false for
// unknown backends, in which case the returned profile carries DefaultThreshold
// and an empty metric.
func ProfileFor(backend entities.Backend) (Profile, bool) {
	p, ok := profiles[backend]
	if !ok {
		return Profile{Backend: backend, Threshold: DefaultThreshold}, false
	}
	return p, true
}

// Profiles returns every known profile in entities.Backends order.
func Profiles() []Profile {
	out := make([]Profile, 0, len(entities.Backends))
	for _, b := range entities.Backends {
		if p, ok := profiles[b]; ok {
			out = append(out, p)
		}
	}
	return out
}

// EffectiveThreshold returns the acceptance bar for one probe embedding.
func (p Profile) EffectiveThreshold(probe []float32) float64 {
	if !p.QualityAdjusted {
		return p.Threshold
	}
	q := FeatureQuality(p.QualityVariant, probe)
	return p.Threshold * (1.0 - QualityThresholdWeight*q)
}

// Similarity scores a against b with this profile's metric.
func (p Profile) Similarity(a, b []float32) float64 {
	return Compute(p.Metric, a, b)
}

// Matches reports whether sim clears threshold. The comparison is strict.
func Matches(sim, threshold float64) bool {
	return sim > threshold
}
