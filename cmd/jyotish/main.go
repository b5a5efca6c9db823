// Command jyotish computes charts, dashas, panchang and transits from the
// command line.
package main

func main() {
	Execute()
}
