package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики конвейера выдачи
var (
	// deliveriesTotal — количество выдач по исходу.
	deliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ss_deliveries_total",
		Help: "Количество выдач артефактов по исходу.",
	}, []string{"kind", "status"})

	// deliveryBytesTotal — переданные получателям байты шифртекста.
	deliveryBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ss_delivery_bytes_total",
		Help: "Общее количество байт шифртекста, отданных получателям.",
	})

	// activeDeliveries — открытые в данный момент потоки выдачи.
	activeDeliveries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ss_active_deliveries",
		Help: "Количество открытых потоков выдачи.",
	})
)

func recordDelivery(kind string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	deliveriesTotal.WithLabelValues(kind, status).Inc()
}
