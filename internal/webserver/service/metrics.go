package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chunksWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clouddrive_chunks_written_total",
		Help: "Number of staged chunks.",
	})

	chunkBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clouddrive_chunk_bytes_total",
		Help: "Number of bytes staged as chunks.",
	})

	mergesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clouddrive_merges_total",
		Help: "Number of merges by result.",
	}, []string{"result"})

	uploadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clouddrive_direct_uploads_total",
		Help: "Number of non-chunked uploads.",
	})

	downloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clouddrive_downloads_total",
		Help: "Number of downloads by kind (full, partial).",
	}, []string{"kind"})

	downloadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clouddrive_download_bytes_total",
		Help: "Number of bytes announced to download clients.",
	})
)
