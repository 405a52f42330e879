package snapshot

import (
	"go.uber.org/zap"

	"github.com/fastygo/orderdesk/domain"
	"github.com/fastygo/orderdesk/internal/records"
	"github.com/fastygo/orderdesk/repository"
)

// Tables pairs the two record stores with one sink.
type Tables struct {
	Orders     *Snapshotter[*domain.Order, repository.OrderRow]
	Influences *Snapshotter[*domain.InfluenceEvent, repository.InfluenceRow]
}

// Bind wires orders and influences to the tables of sink.
func Bind(
	sink repository.Sink,
	orders *records.Store[*domain.Order],
	influences *records.Store[*domain.InfluenceEvent],
	logger *zap.Logger,
) Tables {
	return Tables{
		Orders:     New(repository.TableOrders, orders, sink.Orders(), Codec[*domain.Order, repository.OrderRow](OrderCodec{}), logger),
		Influences: New(repository.TableInfluences, influences, sink.Influences(), Codec[*domain.InfluenceEvent, repository.InfluenceRow](InfluenceCodec{}), logger),
	}
}
