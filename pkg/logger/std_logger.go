package logger

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// configuration :
// Provides a way to configure the way logs are displayed both in
// terms of level and in terms of the instance executing the logger.
//
// The `AppName` describes a string for the name of the application
// using the logger.
// The default value is "spacecore".
//
// The `InstanceID` allows to tag every message with the identifier
// of the process that produced it, which is useful to tell apart
// several instances of the core logging to the same aggregator.
// The default value is "local".
//
// The `Level` is a string representing the minimum severity that a
// message must have in order to be displayed.
// The default value is "info".
//
// The `Buffer` allows to specify the size of the channel used to
// accumulate messages before they are handed to the logging device.
// The default value is 500.
type configuration struct {
	AppName    string
	InstanceID string
	Level      string
	Buffer     int
}

// traceMessage :
// Describes a single message enqueued by the logger, carrying
// enough information to be rendered by the underlying zerolog
// device once it reaches the front of the queue.
type traceMessage struct {
	level   Severity
	module  string
	content string
}

// StdLogger :
// Describes the logger structure used to perform logging across the
// core. It forwards log messages received as Go structures to a
// zerolog sink while handling a buffering mechanism so that callers
// are never blocked by the underlying display system (unless the
// buffer itself is saturated).
//
// The `config` carries the settings parsed at construction time.
//
// The `sink` is the zerolog logger actually responsible for writing
// and filtering messages by severity.
//
// The `logChannel` receives trace messages from every module before
// they are handed over to the `sink`. Its capacity is set by the
// configuration to absorb bursts without blocking callers.
//
// The `endChannel` allows to terminate the active draining loop.
//
// The `closed` flag prevents further messages from being enqueued
// once `Release` has been called.
//
// The `locker` protects `closed` from concurrent access.
//
// The `waiter` allows `Release` to block until the draining loop has
// flushed every message still in the channel.
type StdLogger struct {
	config configuration
	sink   zerolog.Logger

	logChannel chan traceMessage
	endChannel chan bool
	closed     bool
	locker     sync.Mutex
	waiter     sync.WaitGroup
}

// parseConfiguration :
// Used to retrieve the parameters to apply to the logger from the
// configuration file and environment. A default configuration is
// returned for any value that is not explicitly set.
//
// Returns the parsed configuration.
func parseConfiguration() configuration {
	config := configuration{
		AppName:    "spacecore",
		InstanceID: "local",
		Level:      "info",
		Buffer:     500,
	}

	if viper.IsSet("Logger.Name") {
		config.AppName = viper.GetString("Logger.Name")
	}
	if viper.IsSet("Logger.InstanceID") {
		config.InstanceID = viper.GetString("Logger.InstanceID")
	}
	if viper.IsSet("Logger.Level") {
		config.Level = viper.GetString("Logger.Level")
	}
	if viper.IsSet("Logger.Buffer") {
		config.Buffer = viper.GetInt("Logger.Buffer")
	}

	return config
}

// NewStdLogger :
// Used to create a new logger tagged with the specified instance
// name. The created logger parses the configuration file/env and
// builds a console-rendering zerolog sink from it.
//
// The `instanceID` identifies the running process; an empty value
// falls back to "local".
//
// Returns the built-in logger.
func NewStdLogger(instanceID string) Logger {
	config := parseConfiguration()

	if len(instanceID) > 0 {
		config.InstanceID = instanceID
	}

	level, err := zerolog.ParseLevel(config.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	sink := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Str("app", config.AppName).
		Str("instance", config.InstanceID).
		Logger()

	log := &StdLogger{
		config:     config,
		sink:       sink,
		logChannel: make(chan traceMessage, config.Buffer),
		endChannel: make(chan bool),
	}

	log.waiter.Add(1)
	go log.performLogging()

	return log
}

// Trace :
// Used to perform the log of the input message with the specified
// level. The message is not directly rendered but placed on the
// internal channel so that it is processed by the draining loop.
//
// The `level` describes the severity of the message to log.
//
// The `module` names the component emitting the message.
//
// The `message` describes the content of the message to log.
func (log *StdLogger) Trace(level Severity, module string, message string) {
	trace := traceMessage{
		level:   level,
		module:  module,
		content: message,
	}

	log.locker.Lock()
	defer log.locker.Unlock()

	if !log.closed {
		log.logChannel <- trace
	}
}

// Release :
// Used to perform the termination of the active draining loop for
// this logger. It blocks until every message posted up until this
// call has been flushed to the underlying device.
func (log *StdLogger) Release() {
	log.endChannel <- false

	log.locker.Lock()
	log.closed = true
	close(log.logChannel)
	log.locker.Unlock()

	log.waiter.Wait()
}

// performLogging :
// Meant to be launched as a goroutine, it drains the internal trace
// channel and forwards every message to the zerolog sink until the
// logger is released.
func (log *StdLogger) performLogging() {
	keepGoing := true

	for keepGoing {
		select {
		case keepGoing = <-log.endChannel:
		case trace, ok := <-log.logChannel:
			if !ok {
				keepGoing = false
				break
			}
			log.emit(trace)
		}
	}

	for trace := range log.logChannel {
		log.emit(trace)
	}

	log.waiter.Done()
}

// emit :
// Renders a single trace message through the zerolog sink.
func (log *StdLogger) emit(trace traceMessage) {
	log.sink.WithLevel(trace.level.zerologLevel()).
		Str("module", trace.module).
		Msg(trace.content)
}
