// Package walk drives the "first link leads to Philosophy" traversal.
//
// An Engine is a small state machine:
//
//	AwaitingTopic ──topic──▶ FetchingAndParsing ──"Philosophy"──▶ Done
//	      ▲                      │        ▲
//	      └──── any failure ─────┘        │
//	                             │        │
//	                             └─link─▶ Advancing (step count + 1)
//
// Every page-level failure (fetch error, missing article, non-article page,
// malformed markup, no admissible link) and the optional step limit take
// the same transition: the attempt is abandoned, the WalkState is reset to
// (empty, 0), and a new starting topic is requested from the TopicSource.
//
// The engine never crashes on bad input. Run only returns when Philosophy
// is reached, the topic source is exhausted (ErrNoMoreTopics), or the
// context is cancelled.
//
// BatchRunner runs several independent walks concurrently. Each walk gets
// its own Engine, so no WalkState is ever shared.
package walk
