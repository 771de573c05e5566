package kafka

import (
	"context"
	"net"
	"testing"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/events"

	"github.com/shopspring/decimal"
)

func TestNewPublisherValidation(t *testing.T) {
	if _, err := NewPublisher(nil, "ledger"); err == nil {
		t.Error("expected error without brokers")
	}
	if _, err := NewPublisher([]string{"localhost:9092"}, ""); err == nil {
		t.Error("expected error without topic")
	}
	p, err := NewPublisher([]string{"localhost:9092"}, "ledger")
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	if p.writer.Topic != "ledger" {
		t.Errorf("topic = %q", p.writer.Topic)
	}
}

func TestMessageFor(t *testing.T) {
	exp := core.Expense{ID: "exp-9", Description: "Taxi", Amount: decimal.NewFromInt(20)}
	evt := events.ForExpense(events.ExpenseEdited, exp, core.Summary{})

	msg, err := messageFor(evt)
	if err != nil {
		t.Fatalf("messageFor: %v", err)
	}
	if string(msg.Key) != "exp-9" {
		t.Errorf("key = %q, want expense id", msg.Key)
	}
	decoded, err := events.FromJSON(msg.Value)
	if err != nil || decoded.ID != evt.ID {
		t.Fatalf("value does not decode to the event: %v", err)
	}
	if len(msg.Headers) != 2 || string(msg.Headers[0].Value) != string(events.ExpenseEdited) {
		t.Errorf("unexpected headers %+v", msg.Headers)
	}

	budgetEvt := events.ForBudget(events.BudgetChanged, core.Summary{})
	msg, _ = messageFor(budgetEvt)
	if string(msg.Key) != string(events.BudgetChanged) {
		t.Errorf("budget event key = %q", msg.Key)
	}
}

func TestWriterFlushesWithoutWaitingForBatch(t *testing.T) {
	p, err := NewPublisher([]string{"localhost:9092"}, "ledger")
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	if p.writer.BatchTimeout != batchTimeout || batchTimeout >= 100*time.Millisecond {
		t.Errorf("BatchTimeout = %v, want a few milliseconds", p.writer.BatchTimeout)
	}
	if p.writer.WriteTimeout != publishTimeout {
		t.Errorf("WriteTimeout = %v, want %v", p.writer.WriteTimeout, publishTimeout)
	}
}

func TestPublishIsBoundedBySilentBroker(t *testing.T) {
	// Accepts connections but never answers.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		var conns []net.Conn
		defer func() {
			for _, c := range conns {
				c.Close()
			}
		}()
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conns = append(conns, conn)
		}
	}()

	p, err := NewPublisher([]string{ln.Addr().String()}, "ledger")
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	exp := core.Expense{ID: "exp-1", Description: "Taxi", Amount: decimal.NewFromInt(20)}
	err = p.Publish(ctx, events.ForExpense(events.ExpenseAdded, exp, core.Summary{}))
	if err == nil {
		t.Fatal("expected error from silent broker")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Publish took %v, want it bounded by the context", elapsed)
	}
}
