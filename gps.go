package main

import (
	"bufio"
	"image/color"
	"math"
	"os"
	"sync"

	"github.com/adrianmo/go-nmea"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tarm/serial"
)

const defaultGPSPort = "/dev/ttyUSB0"

// GPS reads NMEA sentences from a serial receiver and keeps the latest fix,
// for showing the operator's own position while surveying routes in the field.
type GPS struct {
	done       chan struct{}
	wg         sync.WaitGroup
	serialPort *serial.Port
	running    bool
	latitude   float64
	longitude  float64
	altitude   float64
	speed      float64
	course     float64
	hdop       float64
}

func NewGPS() *GPS {
	return &GPS{running: false}
}

func gpsPortName() string {
	if port := os.Getenv("TRANSITFORGE_GPS_PORT"); port != "" {
		return port
	}
	return defaultGPSPort
}

func (gps *GPS) Start() error {
	config := &serial.Config{
		Name: gpsPortName(),
		Baud: 9600,
	}

	port, err := serial.OpenPort(config)
	if err != nil {
		return err
	}
	gps.serialPort = port

	scanner := bufio.NewScanner(port)
	gps.done = make(chan struct{})

	gps.wg.Add(1)
	go func() {
		defer gps.wg.Done()

		for {
			select {
			case <-gps.done:
				return
			default:
				if scanner.Scan() {
					sentence, err := nmea.Parse(scanner.Text())
					if err != nil {
						continue // Ignore invalid sentences
					}

					switch s := sentence.(type) {
					case nmea.GGA:
						gps.latitude = s.Latitude
						gps.longitude = s.Longitude
						gps.altitude = s.Altitude
						gps.hdop = s.HDOP
					case nmea.RMC:
						gps.latitude = s.Latitude
						gps.longitude = s.Longitude
						gps.speed = s.Speed
						gps.course = s.Course
					case nmea.GLL:
						gps.latitude = s.Latitude
						gps.longitude = s.Longitude
					}
				}
			}
		}
	}()

	gps.running = true
	return nil
}

func (gps *GPS) Stop() {
	close(gps.done)
	gps.wg.Wait() // Wait for the Go routine to exit

	if gps.serialPort != nil {
		gps.serialPort.Close()
	}

	gps.running = false
}

// drawGPSMarker draws the current fix as a translucent circle sized by HDOP
// with a short course line.
func drawGPSMarker(screen *ebiten.Image, x, y, radius float32, course float64) {
	if radius < 4 {
		radius = 4
	}
	vector.DrawFilledCircle(screen, x, y, radius, color.RGBA{0, 0, 255, 179}, false)

	courseRad := (course - 90) * math.Pi / 180
	dx := float32(math.Cos(courseRad)) * radius * 1.5
	dy := float32(math.Sin(courseRad)) * radius * 1.5
	vector.StrokeLine(screen, x, y, x+dx, y+dy, 2, color.RGBA{0, 0, 255, 255}, false)
}
