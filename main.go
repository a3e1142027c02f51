package main

import "github.com/redactyl/shadowscan/cmd/shadowscan"

func main() {
	shadowscan.Execute()
}
