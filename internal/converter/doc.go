// Package converter orchestrates the conversion pipeline.
//
// A Converter ties together the database, the media and stream file
// stores, the prober, the encoder and the job queue. Conversions are
// asynchronous: Convert gates the request, ensures the stream record
// exists and dispatches an encode job; the job writes its terminal
// state (successful or failure) back to the record when it finishes.
//
// Stream records can disappear while a job is in flight, through
// cancellation or asset deletion. Jobs treat a vanished record as a
// benign signal: they stop, remove whatever output they produced and
// report no error. When two dispatches race for the same record the
// later job's result wins.
package converter
