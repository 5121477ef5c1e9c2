package chainwalk

//go:generate moq -pkg mocks -out ./mocks/block_source_mock.go . BlockSource

//go:generate moq -pkg mocks -out ./mocks/sink_mock.go . Sink
