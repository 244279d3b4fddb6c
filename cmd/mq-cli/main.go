package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ttacon/chalk"

	"github.com/phenixreturn/multi-agent-coverage-planner/common"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/mq"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/types"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/utils"
)

func splitEventSlug(eventslug string) (channel string, topic string, err error) {
	res := strings.Split(eventslug, ":")
	if len(res) != 2 || strings.TrimSpace(res[0]) == "" || strings.TrimSpace(res[1]) == "" {
		return "", "", errors.New("Invalid event slug")
	}

	return strings.TrimSpace(res[0]), strings.TrimSpace(res[1]), nil
}

func main() {

	mqHost := flag.String("mqhost", "", "MQ host")
	publish := flag.String("publish", "", "Published event; example trade:patch")
	publishdata := flag.String("data", "", "Published payload, json; example {\"id\": 5}")
	subscribe := flag.String("subscribe", "", "Subscribed event; example viz:message")

	flag.Parse()

	if *mqHost == "" {
		fmt.Println("Error: mqhost is required.")
		os.Exit(1)
	}

	if *publish == "" && *subscribe == "" {
		fmt.Println("Error: one of --publish or --subscribe is required.")
		os.Exit(1)
	}

	brokerclient, err := mq.NewClient(*mqHost)
	utils.Check(err, "Error: could not connect to messagebroker at "+string(*mqHost))

	if *subscribe != "" {
		channel, topic, err := splitEventSlug(*subscribe)
		utils.Check(err, "Error: Invalid event slug \""+*subscribe+"\"")

		brokerclient.Subscribe(channel, topic, func(msg mq.BrokerMessage) {
			fmt.Print(chalk.Yellow)
			fmt.Print(msg.Channel+":"+msg.Topic, chalk.Reset, " ")
			fmt.Println(string(msg.Data))
		})

		<-common.SignalHandler()
		brokerclient.Stop()
		return
	}

	channel, topic, err := splitEventSlug(*publish)
	utils.Check(err, "Error: Invalid event slug \""+*publish+"\"")

	var payload types.MQPayload
	if *publishdata != "" {
		err = json.Unmarshal([]byte(*publishdata), &payload)
		if err != nil {
			fmt.Println("Error: Invalid json for --data")
			return
		}
	}

	mqmessage := types.
		NewMQMessage("mq-cli", "Synthesizing event from cli").
		SetPayload(payload)

	err = brokerclient.Publish(channel, topic, mqmessage)
	if err != nil {
		panic(err)
	}

	fmt.Print("Message published ")
	fmt.Print(chalk.Yellow)
	fmt.Print(channel+":"+topic, chalk.Reset)
	if payload != nil {
		reencodedpayload, _ := json.Marshal(payload)
		fmt.Print(chalk.Cyan, " ")
		fmt.Print(string(reencodedpayload), chalk.Reset)
	}

	fmt.Println("")

	brokerclient.Stop()
}
