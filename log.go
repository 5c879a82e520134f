package main

import (
	"io/ioutil"
	"log"
	"os"
)

const logFlags = log.Ldate | log.Lmicroseconds | log.LUTC

// Loggers stay silent until logInit runs, so tests can call into the
// provisioner without any setup.
var (
	Debug = log.New(ioutil.Discard, "DEB: ", logFlags)
	Info  = log.New(ioutil.Discard, "INF: ", logFlags)
	Error = log.New(ioutil.Discard, "ERR: ", logFlags)
)

func logInit(conf config) {

	errorHandle := os.Stderr
	infoHandle := os.Stdout

	debugHandle := ioutil.Discard
	if *conf.logVerbose {
		debugHandle = os.Stderr
	}

	Debug = log.New(debugHandle, "DEB: ", logFlags)
	Info = log.New(infoHandle, "INF: ", logFlags)
	Error = log.New(errorHandle, "ERR: ", logFlags)

	// no condition here, as you'll only see the message if
	// Verbose logging really is enabled!
	Debug.Printf("Verbose logging enabled")

}
