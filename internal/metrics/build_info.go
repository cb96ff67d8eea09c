package metrics

import "github.com/prometheus/client_golang/prometheus"

// RegisterBuildInfo публикует fulfillment_build_info со значением 1 и сведениями о сборке в метках.
func RegisterBuildInfo(registerer prometheus.Registerer, version, commit, goVersion string) {
	info := registerGaugeVec(registerer, prometheus.GaugeOpts{
		Name: "fulfillment_build_info",
		Help: "Build information of the running fulfillment service",
	}, []string{"version", "commit", "go_version"})
	info.Reset()
	info.WithLabelValues(version, commit, goVersion).Set(1)
}
