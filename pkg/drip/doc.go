// Package drip decides, for every configured message queue, whether a single
// pending message should go out during the current time period.
//
// A queue is described by a master record (see MasterRecord) and backed by an
// ordered collection of messages (see MessageStore). Each call to Queue.Visit
// walks a fixed sequence of gates and stops at the first one that applies:
//
//  1. too early: the local time is before the configured start time of day
//  2. already sent: a message already carries the current period key
//  3. random gate: a uniform draw in [0, RandomLevel] was not zero
//  4. dispatch: the lowest pending orderid is claimed, delivered and stamped
//
// At most one message is delivered per queue per period. The claim step is a
// conditional write in the store, so two overlapping visits can never both
// deliver for the same period key.
//
// # Usage
//
//	backend := drip.NewMemoryBackend()
//	registry := drip.NewRegistry(backend, backend, drip.NewChannels(textSender, emailSender))
//	runner := drip.NewRunner(registry, drip.WithRunnerLogger(log))
//
//	reports := runner.VisitAll(ctx)
//	for _, r := range reports {
//		log.Info("visited", "collection", r.Collection, "val", r.Result.Code())
//	}
//
// # Errors
//
// Configuration, storage and transport failures are reported per queue in
// the Result and never abort a cycle. Use errors.Is with ErrConfiguration,
// ErrStorage, ErrTransport and ErrTimeout to classify them.
package drip
