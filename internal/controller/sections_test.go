package controller

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/openlumen/rdm-gateway/internal/rdm"
)

func itemByLabel(t *testing.T, section *Section, label string) Item {
	t.Helper()
	for _, item := range section.Items {
		if item.Label == label {
			return item
		}
	}
	t.Fatalf("no item labelled %q in %+v", label, section.Items)
	return Item{}
}

func TestDeviceInfoChain(t *testing.T) {
	transport := newFakeTransport()
	transport.reply(rdm.PIDSoftwareVersionLabel, "v2.1")
	transport.reply(rdm.PIDDeviceModelDescription, "LED Par 64")
	transport.reply(rdm.PIDDeviceInfo, &rdm.DeviceDescriptor{
		ProtocolVersionHigh: 1,
		ProtocolVersionLow:  0,
		DeviceModel:         42,
		SoftwareVersion:     7,
		DMXFootprint:        4,
		CurrentPersonality:  1,
		PersonalityCount:    3,
		SensorCount:         2,
	})
	c := New(transport)

	section, err := c.Dispatch(context.Background(), 1, testUID, SectionDeviceInfo, false,
		Params{FieldHint: deviceInfoHintModel})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	// exact step order: software version, model description, descriptor
	sent := transport.sentRequests()
	wantOrder := []rdm.PID{rdm.PIDSoftwareVersionLabel, rdm.PIDDeviceModelDescription, rdm.PIDDeviceInfo}
	if len(sent) != len(wantOrder) {
		t.Fatalf("sent %d requests, want %d", len(sent), len(wantOrder))
	}
	for i, pid := range wantOrder {
		if sent[i].PID != pid {
			t.Errorf("step %d = %v, want %v", i, sent[i].PID, pid)
		}
	}

	// accumulated strings render alongside the descriptor's native values
	if got := itemByLabel(t, section, "Device Model").Value; got != "LED Par 64 (42)" {
		t.Errorf("Device Model = %q", got)
	}
	if got := itemByLabel(t, section, "Software Version").Value; got != "v2.1 (7)" {
		t.Errorf("Software Version = %q", got)
	}
	if got := itemByLabel(t, section, "Protocol Version").Value; got != "1.0" {
		t.Errorf("Protocol Version = %q", got)
	}
	if got := itemByLabel(t, section, "Personality").Value; got != "1 of 3" {
		t.Errorf("Personality = %q", got)
	}
}

func TestDeviceInfoChainSkipsModelWithoutHint(t *testing.T) {
	transport := newFakeTransport()
	transport.reply(rdm.PIDSoftwareVersionLabel, "v2.1")
	transport.reply(rdm.PIDDeviceInfo, &rdm.DeviceDescriptor{DeviceModel: 42})
	c := New(transport)

	section, err := c.Dispatch(context.Background(), 1, testUID, SectionDeviceInfo, false, nil)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	for _, req := range transport.sentRequests() {
		if req.PID == rdm.PIDDeviceModelDescription {
			t.Errorf("model description fetched without hint")
		}
	}
	if got := itemByLabel(t, section, "Device Model").Value; got != "42" {
		t.Errorf("Device Model = %q, want bare native value", got)
	}
}

func TestDeviceInfoChainToleratesRejectedSoftSteps(t *testing.T) {
	transport := newFakeTransport()
	transport.replyStatus(rdm.PIDSoftwareVersionLabel, false,
		rdm.NackedStatus(rdm.NackUnknownPID), nil)
	transport.replyStatus(rdm.PIDDeviceModelDescription, false,
		rdm.NackedStatus(rdm.NackUnknownPID), nil)
	transport.reply(rdm.PIDDeviceInfo, &rdm.DeviceDescriptor{DeviceModel: 42, SoftwareVersion: 7})
	c := New(transport)

	section, err := c.Dispatch(context.Background(), 1, testUID, SectionDeviceInfo, false,
		Params{FieldHint: deviceInfoHintModel})
	if err != nil {
		t.Fatalf("rejected soft steps must not abort the chain: %v", err)
	}
	if got := itemByLabel(t, section, "Software Version").Value; got != "7" {
		t.Errorf("Software Version = %q, want native only", got)
	}
}

func TestDeviceInfoChainFinalStepFailureIsFatal(t *testing.T) {
	transport := newFakeTransport()
	transport.reply(rdm.PIDSoftwareVersionLabel, "v2.1")
	transport.replyStatus(rdm.PIDDeviceInfo, false,
		rdm.NackedStatus(rdm.NackHardwareFault), nil)
	c := New(transport)

	_, err := c.Dispatch(context.Background(), 1, testUID, SectionDeviceInfo, false, nil)
	var statusErr *rdm.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want *rdm.StatusError", err)
	}
	if statusErr.Status.Type != rdm.ResponseNacked {
		t.Errorf("classification = %v, want nacked", statusErr.Status.Type)
	}
}

func TestDeviceInfoChainTransportFailureAborts(t *testing.T) {
	transport := newFakeTransport()
	transport.replyStatus(rdm.PIDSoftwareVersionLabel, false,
		rdm.TransportError("link down"), nil)
	c := New(transport)

	_, err := c.Dispatch(context.Background(), 1, testUID, SectionDeviceInfo, false, nil)
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("err = %v, want ErrBackendUnavailable", err)
	}
	if got := transport.sendCount(); got != 1 {
		t.Errorf("chain continued after transport failure: %d requests", got)
	}
}

func TestLanguageChain(t *testing.T) {
	transport := newFakeTransport()
	transport.reply(rdm.PIDLanguageCapabilities, []string{"en", "de", "fr"})
	transport.reply(rdm.PIDLanguage, "de")
	c := New(transport)

	section, err := c.Dispatch(context.Background(), 1, testUID, SectionLanguage, false, nil)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	item := section.Items[0]
	if item.Type != ItemSelect || len(item.Options) != 3 {
		t.Fatalf("item = %+v", item)
	}
	if item.Selected != 1 {
		t.Errorf("Selected = %d, want 1 (de)", item.Selected)
	}
}

func TestLanguageChainSynthesizesOptionForEmptyList(t *testing.T) {
	transport := newFakeTransport()
	transport.reply(rdm.PIDLanguageCapabilities, []string{})
	transport.reply(rdm.PIDLanguage, "en")
	c := New(transport)

	section, err := c.Dispatch(context.Background(), 1, testUID, SectionLanguage, false, nil)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	item := section.Items[0]
	if len(item.Options) != 1 || item.Options[0].Value != "en" || item.Selected != 0 {
		t.Errorf("item = %+v, want single synthesized option", item)
	}
}

func TestLanguageChainNoSelectionWhenActiveUnknown(t *testing.T) {
	transport := newFakeTransport()
	transport.reply(rdm.PIDLanguageCapabilities, []string{"en", "de"})
	transport.replyStatus(rdm.PIDLanguage, false,
		rdm.NackedStatus(rdm.NackHardwareFault), nil)
	c := New(transport)

	section, err := c.Dispatch(context.Background(), 1, testUID, SectionLanguage, false, nil)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	item := section.Items[0]
	if len(item.Options) != 2 || item.Selected != -1 {
		t.Errorf("item = %+v, want two options and no selection", item)
	}
}

func TestBootSoftwareChain(t *testing.T) {
	tests := []struct {
		name        string
		label       any
		labelStatus rdm.ResponseStatus
		version     any
		verStatus   rdm.ResponseStatus
		want        string
	}{
		{
			name:  "label and version",
			label: "boot-2", version: uint32(3),
			want: "boot-2 (3)",
		},
		{
			name:  "version only",
			label: "", version: uint32(3),
			want: "3",
		},
		{
			name:  "label only when version nacked",
			label: "boot-2",
			verStatus: rdm.NackedStatus(rdm.NackUnknownPID),
			want:      "boot-2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := newFakeTransport()
			transport.replyStatus(rdm.PIDBootSoftwareVersionName, false, tt.labelStatus, tt.label)
			transport.replyStatus(rdm.PIDBootSoftwareVersionID, false, tt.verStatus, tt.version)
			c := New(transport)

			section, err := c.Dispatch(context.Background(), 1, testUID, SectionBootSoftware, false, nil)
			if err != nil {
				t.Fatalf("Dispatch failed: %v", err)
			}
			if got := itemByLabel(t, section, "Boot Software").Value; got != tt.want {
				t.Errorf("Boot Software = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSensorChain(t *testing.T) {
	transport := newFakeTransport()
	transport.reply(rdm.PIDSensorDefinition, &rdm.SensorDescriptor{
		Index:           1,
		Type:            0x00, // temperature
		Unit:            0x01, // centigrade
		RangeMin:        -10,
		RangeMax:        120,
		NormalMin:       0,
		NormalMax:       80,
		RecordedSupport: rdm.SensorRecordedValue | rdm.SensorRecordedRangeValues,
		Description:     "Lamp temperature",
	})
	transport.reply(rdm.PIDSensorValue, &rdm.SensorValue{
		Index: 1, Present: 45, Lowest: 20, Highest: 60, Recorded: 44,
	})
	c := New(transport)

	section, err := c.Dispatch(context.Background(), 1, testUID, SectionSensor, false,
		Params{FieldHint: "1"})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	// the sensor index rides along as the request parameter
	for _, req := range transport.sentRequests() {
		if req.Params != uint8(1) {
			t.Errorf("request %v carried params %v, want sensor index 1", req.PID, req.Params)
		}
	}

	if got := itemByLabel(t, section, "Description").Value; got != "Lamp temperature" {
		t.Errorf("Description = %q", got)
	}
	if got := itemByLabel(t, section, "Range").Value; got != "-10 - 120 C" {
		t.Errorf("Range = %q", got)
	}
	if got := itemByLabel(t, section, "Recorded Value").Value; got != "44 C" {
		t.Errorf("Recorded Value = %q", got)
	}
	if got := itemByLabel(t, section, "Min / Max Recorded Values").Value; got != "20 - 60 C" {
		t.Errorf("Min / Max = %q", got)
	}
	if got := itemByLabel(t, section, "Present Value").Value; got != "45 C" {
		t.Errorf("Present Value = %q", got)
	}
	if section.SaveButton != "Record Sensor" {
		t.Errorf("SaveButton = %q", section.SaveButton)
	}
}

func TestSensorChainToleratesMissingDefinition(t *testing.T) {
	transport := newFakeTransport()
	transport.replyStatus(rdm.PIDSensorDefinition, false,
		rdm.NackedStatus(rdm.NackUnknownPID), nil)
	transport.reply(rdm.PIDSensorValue, &rdm.SensorValue{Index: 0, Present: 12})
	c := New(transport)

	section, err := c.Dispatch(context.Background(), 1, testUID, SectionSensor, false,
		Params{FieldHint: "0"})
	if err != nil {
		t.Fatalf("missing definition must not abort the value read: %v", err)
	}

	// nothing derived from the definition may be fabricated
	for _, item := range section.Items {
		switch item.Label {
		case "Description", "Type", "Range", "Normal Range", "Recorded Value":
			t.Errorf("item %q fabricated without a definition", item.Label)
		}
	}
	if got := itemByLabel(t, section, "Present Value").Value; got != "12" {
		t.Errorf("Present Value = %q, want bare value", got)
	}
}

func TestSensorChainInvalidHint(t *testing.T) {
	transport := newFakeTransport()
	c := New(transport)

	_, err := c.Dispatch(context.Background(), 1, testUID, SectionSensor, false,
		Params{FieldHint: "bogus"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if transport.sendCount() != 0 {
		t.Errorf("validation failure still issued %d requests", transport.sendCount())
	}
}

type recorderFunc func(universe uint, uid string, sensor uint8, value float64)

func (f recorderFunc) WriteSensorReading(universe uint, uid string, sensor uint8, value float64) {
	f(universe, uid, sensor, value)
}

func TestSensorChainRecordsTelemetry(t *testing.T) {
	transport := newFakeTransport()
	transport.replyStatus(rdm.PIDSensorDefinition, false,
		rdm.NackedStatus(rdm.NackUnknownPID), nil)
	transport.reply(rdm.PIDSensorValue, &rdm.SensorValue{Present: 33})
	c := New(transport)

	var mu sync.Mutex
	var gotValue float64
	var gotSensor uint8
	c.SetSensorRecorder(recorderFunc(func(_ uint, _ string, sensor uint8, value float64) {
		mu.Lock()
		gotSensor, gotValue = sensor, value
		mu.Unlock()
	}))

	_, err := c.Dispatch(context.Background(), 1, testUID, SectionSensor, false,
		Params{FieldHint: "2"})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if gotSensor != 2 || gotValue != 33 {
		t.Errorf("recorded (%d, %v), want (2, 33)", gotSensor, gotValue)
	}
}

func TestWriteStartAddressValidation(t *testing.T) {
	transport := newFakeTransport()
	c := New(transport)

	tests := []string{"70000", "-1", "512", "abc", ""}
	for _, value := range tests {
		_, err := c.Dispatch(context.Background(), 1, testUID, SectionDMXAddress, true,
			Params{FieldAddress: value})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("address %q: err = %v, want ErrValidation", value, err)
		}
	}
	if transport.sendCount() != 0 {
		t.Errorf("validation failures issued %d network requests", transport.sendCount())
	}
}

func TestWriteStartAddress(t *testing.T) {
	transport := newFakeTransport()
	transport.replySet(rdm.PIDDMXStartAddress)
	c := New(transport)

	_, err := c.Dispatch(context.Background(), 1, testUID, SectionDMXAddress, true,
		Params{FieldAddress: "101"})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	sent := transport.sentRequests()
	if len(sent) != 1 || !sent[0].Set || sent[0].Params != uint16(101) {
		t.Errorf("sent = %+v, want one SET with address 101", sent)
	}
}

func TestWriteRejectedByDevice(t *testing.T) {
	transport := newFakeTransport()
	transport.replyStatus(rdm.PIDDeviceLabel, true,
		rdm.NackedStatus(rdm.NackWriteProtect), nil)
	c := New(transport)

	_, err := c.Dispatch(context.Background(), 1, testUID, SectionDeviceLabel, true,
		Params{FieldLabel: "stage left"})
	var statusErr *rdm.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want *rdm.StatusError", err)
	}
	if statusErr.Status.NackReason != rdm.NackWriteProtect {
		t.Errorf("reason = %v, want write protect", statusErr.Status.NackReason)
	}
}

func TestWriteBroadcastIsAccepted(t *testing.T) {
	transport := newFakeTransport()
	transport.replyStatus(rdm.PIDIdentifyDevice, true,
		rdm.ResponseStatus{Type: rdm.ResponseBroadcast}, nil)
	c := New(transport)

	_, err := c.Dispatch(context.Background(), 1, testUID, SectionIdentify, true,
		Params{FieldIdentify: "1"})
	if err != nil {
		t.Fatalf("broadcast acknowledgement should be fine for writes: %v", err)
	}
}

func TestReadLabelWritesThroughToCache(t *testing.T) {
	transport := newFakeTransport()
	transport.reply(rdm.PIDManufacturerLabel, "Acme")
	c := New(transport)

	// make the resolver track the uid first; script only answers the
	// section read, so the background queue stays in flight
	c.Resolver().NotifyDiscoveredUIDs(1, []rdm.UID{testUID})

	_, err := c.Dispatch(context.Background(), 1, testUID, SectionManufacturerLabel, false, nil)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if got := c.CachedLabels(1)[testUID].Manufacturer; got != "Acme" {
		t.Errorf("cache = %q, want write-through of read label", got)
	}
}
