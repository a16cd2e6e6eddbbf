package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	PointsLoaded    *prometheus.CounterVec
	PointsFiltered  *prometheus.CounterVec
	StageSeconds    *prometheus.HistogramVec
	ClustersFound   *prometheus.GaugeVec
	NoisePoints     *prometheus.GaugeVec
	ZonesBuilt      *prometheus.GaugeVec
	RegionsProduced prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		PointsLoaded: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hotspots_points_loaded_total",
			Help: "Total number of points accepted from input files.",
		}, []string{"dataset"}),
		PointsFiltered: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hotspots_points_filtered_total",
			Help: "Total number of points dropped during loading and filtering.",
		}, []string{"dataset", "reason"}),
		StageSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hotspots_stage_duration_seconds",
			Help:    "Duration of each pipeline stage.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		ClustersFound: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "hotspots_clusters_found",
			Help: "Number of clusters found in the last clustering run.",
		}, []string{"dataset"}),
		NoisePoints: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "hotspots_noise_points",
			Help: "Number of points labeled as noise in the last clustering run.",
		}, []string{"dataset"}),
		ZonesBuilt: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "hotspots_zones_built",
			Help: "Number of zone polygons built in the last run.",
		}, []string{"layer"}),
		RegionsProduced: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "hotspots_regions_produced",
			Help: "Number of ranked hotspot regions produced by the last combine run.",
		}),
	}
}
