package config_test

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	. "github.com/oceandata/hydromon/pkg/config"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config Suite")
}

var _ = Describe("Config", func() {
	Describe("New", func() {
		It("generates a config with default values", func() {
			cfg := New()
			Expect(cfg.JobsNum).To(Equal(4))
			Expect(cfg.BatchSize).To(Equal(10_000))
			Expect(cfg.ChunkSize).To(Equal(100))
			Expect(cfg.PgHost).To(Equal("0.0.0.0"))
			Expect(cfg.PgPort).To(Equal(5432))
			Expect(cfg.PgDB).To(Equal("hydromon"))
			Expect(cfg.HTTPAddr).To(Equal(":8080"))
		})

		It("uses options for setup", func() {
			opts := getOpts()
			cfg := New(opts...)
			Expect(cfg.DataDir).To(Equal("/tmp/hydromon/raw"))
			Expect(cfg.JobsNum).To(Equal(8))
			Expect(cfg.PgHost).To(Equal("localhost"))
			Expect(cfg.PgDB).To(Equal("hydro_test"))
			Expect(cfg.HTTPAddr).To(Equal(":9090"))
		})

		It("derives the combined file from the processed dir", func() {
			cfg := New(OptProcessedDir("/tmp/hydromon/out"))
			Expect(cfg.CombinedFile).To(
				Equal("/tmp/hydromon/out/combined_water_quality.csv"),
			)
		})
	})
})

func getOpts() []Option {
	var opts []Option
	opts = append(opts, OptDataDir("/tmp/hydromon/raw"))
	opts = append(opts, OptProcessedDir("/tmp/hydromon/out"))
	opts = append(opts, OptFishFile("/tmp/hydromon/Fish.csv"))
	opts = append(opts, OptJobsNum(8))
	opts = append(opts, OptBatchSize(500))
	opts = append(opts, OptPgHost("localhost"))
	opts = append(opts, OptPgUser("postgres"))
	opts = append(opts, OptPgPass(""))
	opts = append(opts, OptPgDB("hydro_test"))
	opts = append(opts, OptHTTPAddr(":9090"))
	return opts
}
