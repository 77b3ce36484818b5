// Package event implements the event accessor consumed by the copy engine.
//
// A Record is the named-collection namespace of one event. Like a reused
// event object it lives for the whole run: the reader refills it for every
// event, and collections appended by tasks stay addressable across events
// (their contents are cleared by Reset).
//
// A Handler supplies the records of the primary and of the optional embedded
// input stream, and the storage format of the run.
package event
